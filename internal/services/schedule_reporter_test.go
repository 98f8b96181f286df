package services

import (
	"context"
	"testing"

	"bilancio/internal/core"
)

func TestScheduleReporter_CountOccurrencesInWindow(t *testing.T) {
	rule := dailyRule("r1", core.NewDate(2024, 1, 1))
	rule.Termination = core.Termination{Kind: core.TerminateAfterCount, MaxOccurrences: 5}
	rule.LastMaterialized = core.NewDate(2024, 1, 3)

	store := newFakeStore(rule)
	// Three occurrences already stamped out: only two remain.
	for _, d := range []core.Date{
		core.NewDate(2024, 1, 1),
		core.NewDate(2024, 1, 2),
		core.NewDate(2024, 1, 3),
	} {
		store.transactions = append(store.transactions, core.Transaction{
			ID: "t" + d.String(), Date: d, SourceRuleID: "r1",
		})
	}

	reporter := NewScheduleReporter(store, store)

	got, err := reporter.CountOccurrencesInWindow(context.Background(), "r1",
		core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31))
	if err != nil {
		t.Fatalf("CountOccurrencesInWindow: %v", err)
	}
	if got != 2 {
		t.Errorf("count = %d, want 2 remaining occurrences", got)
	}
}

func TestScheduleReporter_UnknownRule(t *testing.T) {
	reporter := NewScheduleReporter(newFakeStore(), newFakeStore())

	_, err := reporter.CountOccurrencesInWindow(context.Background(), "missing",
		core.NewDate(2024, 1, 1), core.NewDate(2024, 2, 1))
	if err == nil {
		t.Error("expected error for unknown rule")
	}
}

func TestTransactionService_CreateAndDelete(t *testing.T) {
	store := newFakeStore()
	service := NewTransactionService(store, store)

	tx, err := service.Create(context.Background(), core.Transaction{
		Date:        core.NewDate(2024, 3, 1),
		Description: "Groceries",
		Amount:      core.Money{Cents: 4250},
		Account:     "checking",
		Primary:     "Food",
		Secondary:   "Supermarket",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tx.ID == "" {
		t.Error("Create did not assign an ID")
	}
	if len(store.published) != 1 {
		t.Errorf("published %d events, want 1", len(store.published))
	}

	if err := service.Delete(context.Background(), tx.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(store.transactions) != 0 {
		t.Errorf("transaction still present after delete")
	}
}

func TestTransactionService_RejectsInvalid(t *testing.T) {
	service := NewTransactionService(newFakeStore(), nil)

	_, err := service.Create(context.Background(), core.Transaction{
		Date: core.NewDate(2024, 3, 1),
	})
	if err == nil {
		t.Error("invalid transaction was accepted")
	}
}
