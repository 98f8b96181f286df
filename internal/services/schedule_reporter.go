package services

import (
	"context"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/recurrence"
)

// ScheduleReporter answers read-only projection queries for reporting
// views. It fetches the rule and its real materialized count so
// count-terminated rules project only their remaining occurrences.
type ScheduleReporter struct {
	rules        RuleStore
	transactions TransactionStore
}

func NewScheduleReporter(rules RuleStore, transactions TransactionStore) *ScheduleReporter {
	return &ScheduleReporter{
		rules:        rules,
		transactions: transactions,
	}
}

// CountOccurrencesInWindow returns how many occurrences of the rule
// fall inside [windowStart, windowEnd]. Nothing is materialized or
// mutated. An inverted window counts zero.
func (r *ScheduleReporter) CountOccurrencesInWindow(ctx context.Context, ruleID string, windowStart, windowEnd core.Date) (int, error) {
	rule, err := r.rules.GetRule(ctx, ruleID)
	if err != nil {
		return 0, fmt.Errorf("get rule: %w", err)
	}

	materialized, err := r.transactions.CountTransactionsByRule(ctx, ruleID)
	if err != nil {
		return 0, fmt.Errorf("count materialized transactions: %w", err)
	}

	return recurrence.CountOccurrencesInWindow(rule, materialized, windowStart, windowEnd), nil
}
