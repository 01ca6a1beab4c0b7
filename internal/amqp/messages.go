package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Action is what happened to a transaction.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// TransactionChangedMessage announces a write to the expense or income
// ledger. It carries only what a consumer needs to recompute the affected
// month; the record itself is read back from storage.
type TransactionChangedMessage struct {
	ID        core.ID              `json:"id"`
	UserID    core.ID              `json:"userId"`
	Kind      core.TransactionKind `json:"kind"`
	Action    Action               `json:"action"`
	Month     core.MonthKey        `json:"month"`
	Timestamp time.Time            `json:"timestamp"`
}

func NewTransactionChangedMessage(kind core.TransactionKind, action Action, userID, id core.ID, month core.MonthKey) *TransactionChangedMessage {
	return &TransactionChangedMessage{
		ID:        id,
		UserID:    userID,
		Kind:      kind,
		Action:    action,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (m *TransactionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionChangedMessageFromJSON decodes and sanity-checks a message.
func TransactionChangedMessageFromJSON(data []byte) (*TransactionChangedMessage, error) {
	var msg TransactionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID.IsZero() {
		return nil, fmt.Errorf("message has no user")
	}
	if !msg.Kind.Valid() {
		return nil, fmt.Errorf("unknown transaction kind %q", msg.Kind)
	}
	if msg.Month.IsZero() {
		return nil, fmt.Errorf("message has no month")
	}
	return &msg, nil
}
