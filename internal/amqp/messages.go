package amqp

import (
	"encoding/json"
	"time"

	"bilancio/internal/core"
)

// TransactionEventMessage announces a newly recorded transaction.
// It is a lightweight envelope: consumers fetch the full row from the
// database themselves. SourceRuleID is empty for manual entries and
// carries the rule ID for materialized ones.
type TransactionEventMessage struct {
	ID           string    `json:"id"`
	Date         core.Date `json:"date"`
	SourceRuleID string    `json:"source_rule_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewTransactionEventMessage(t core.Transaction) *TransactionEventMessage {
	return &TransactionEventMessage{
		ID:           t.ID,
		Date:         t.Date,
		SourceRuleID: t.SourceRuleID,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
