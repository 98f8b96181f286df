package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/recurrence"
)

// CatchUpProcessor drives the materialization engine: it loads the
// active rules and their already-materialized transactions, runs a
// catch-up pass for "now", and persists whatever the engine returns.
// It owns no scheduling; callers invoke Run on startup, on a ticker, or
// on demand, and every invocation is safe to repeat.
type CatchUpProcessor struct {
	rules        RuleStore
	transactions TransactionStore
	publisher    EventPublisher
}

// NewCatchUpProcessor creates a catch-up processor. publisher may be
// nil to run without messaging.
func NewCatchUpProcessor(rules RuleStore, transactions TransactionStore, publisher EventPublisher) *CatchUpProcessor {
	return &CatchUpProcessor{
		rules:        rules,
		transactions: transactions,
		publisher:    publisher,
	}
}

// Run executes one catch-up pass. It returns the number of transactions
// materialized and persisted. Storage failures are isolated per rule: a
// failed insert stops that rule's remaining occurrences for this pass
// and its cursor advances only through what actually landed, so the
// next pass resumes at the first missing occurrence without
// re-inserting the ones already stored.
func (p *CatchUpProcessor) Run(ctx context.Context, now time.Time) (int, error) {
	if p.rules == nil || p.transactions == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	today := core.DateOf(now)

	activeRules, err := p.rules.ListActiveRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active rules: %w", err)
	}

	materialized, err := p.transactions.ListMaterializedTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list materialized transactions: %w", err)
	}

	slog.InfoContext(ctx, "Running recurring catch-up",
		"total_active", len(activeRules),
		"today", today.String())

	result := recurrence.CatchUp(activeRules, materialized, today)

	for _, w := range result.Warnings {
		slog.WarnContext(ctx, "Rule skipped during catch-up",
			"rule_id", w.RuleID,
			"error", w.Err)
	}

	// The engine emits each rule's transactions in ascending date
	// order. A rule's first insert failure withholds its remaining
	// occurrences: persisting past a gap would leave dates the next
	// pass cannot tell apart from never-materialized ones.
	persisted := 0
	failedRules := make(map[string]bool)
	lastPersisted := make(map[string]core.Date)
	for _, tx := range result.NewTransactions {
		if failedRules[tx.SourceRuleID] {
			continue
		}
		if err := p.transactions.CreateTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to persist materialized transaction",
				"rule_id", tx.SourceRuleID,
				"date", tx.Date.String(),
				"error", err)
			failedRules[tx.SourceRuleID] = true
			continue
		}
		persisted++
		lastPersisted[tx.SourceRuleID] = tx.Date

		if p.publisher != nil {
			if err := p.publisher.PublishTransactionEvent(ctx, tx); err != nil {
				slog.ErrorContext(ctx, "Failed to publish transaction event",
					"id", tx.ID, "error", err)
			}
		}
	}

	p.persistRuleUpdates(ctx, activeRules, result.UpdatedRules, failedRules, lastPersisted)

	slog.InfoContext(ctx, "Recurring catch-up complete",
		"materialized", persisted,
		"rules_checked", len(activeRules),
		"warnings", len(result.Warnings))

	return persisted, nil
}

// persistRuleUpdates advances cursors for rules still active and
// deactivates the ones the engine reported exhausted. A rule whose
// transactions failed partway advances only through its last persisted
// occurrence and stays active, whatever the engine said, so the rest
// of its walk is retried on the next pass.
func (p *CatchUpProcessor) persistRuleUpdates(ctx context.Context, before, after []core.RecurrenceRule, failed map[string]bool, lastPersisted map[string]core.Date) {
	stillActive := make(map[string]core.RecurrenceRule, len(after))
	for _, rule := range after {
		stillActive[rule.ID] = rule
	}

	for _, prev := range before {
		if failed[prev.ID] {
			if last, ok := lastPersisted[prev.ID]; ok {
				if err := p.rules.AdvanceRuleCursor(ctx, prev.ID, last); err != nil {
					slog.ErrorContext(ctx, "Failed to advance rule cursor",
						"rule_id", prev.ID,
						"last_materialized", last.String(),
						"error", err)
				}
			}
			continue
		}

		updated, active := stillActive[prev.ID]
		if !active {
			if err := p.rules.DeactivateRule(ctx, prev.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to deactivate exhausted rule",
					"rule_id", prev.ID, "error", err)
			}
			continue
		}

		if updated.LastMaterialized.IsZero() ||
			updated.LastMaterialized.Equal(prev.LastMaterialized.Time) {
			continue
		}

		if err := p.rules.AdvanceRuleCursor(ctx, prev.ID, updated.LastMaterialized); err != nil {
			slog.ErrorContext(ctx, "Failed to advance rule cursor",
				"rule_id", prev.ID,
				"last_materialized", updated.LastMaterialized.String(),
				"error", err)
		}
	}
}
