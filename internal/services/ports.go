// Package services orchestrates the recurrence engine against the
// persistence layer and the message broker. The engine itself is pure;
// everything stateful lives behind the ports defined here.
package services

import (
	"context"

	"bilancio/internal/core"
)

// RuleStore is the slice of the repository the catch-up processor needs
// for recurring rules.
type RuleStore interface {
	ListActiveRules(ctx context.Context) ([]core.RecurrenceRule, error)
	GetRule(ctx context.Context, id string) (core.RecurrenceRule, error)
	AdvanceRuleCursor(ctx context.Context, id string, last core.Date) error
	DeactivateRule(ctx context.Context, id string) error
}

// TransactionStore is the slice of the repository the services need for
// concrete transactions.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	SoftDeleteTransaction(ctx context.Context, id string) error
	ListMaterializedTransactions(ctx context.Context) ([]core.Transaction, error)
	CountTransactionsByRule(ctx context.Context, ruleID string) (int, error)
}

// EventPublisher announces recorded transactions to downstream
// consumers. Publishing is best-effort: callers log failures and move on.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, t core.Transaction) error
}
