package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

// TransactionService records one-off transactions and announces them on
// the broker. The write to SQLite is authoritative; a failed publish is
// logged and absorbed so the entry is never lost.
type TransactionService struct {
	transactions TransactionStore
	publisher    EventPublisher
}

func NewTransactionService(transactions TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		publisher:    publisher,
	}
}

// Create validates and persists a manual transaction, assigning it an
// ID when the caller left it empty.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	if err := s.transactions.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionEvent(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction event",
				"id", t.ID, "error", err)
		}
	}

	return t, nil
}

// Delete soft-deletes a transaction by ID.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.transactions.SoftDeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}
