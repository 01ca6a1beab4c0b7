package services

import (
	"context"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// Publisher delivers ledger change events. *amqp.Client satisfies it.
type Publisher interface {
	PublishTransactionChanged(ctx context.Context, msg *amqp.TransactionChangedMessage) error
}

// publishChange announces a committed write. Delivery problems are logged
// and never fail the request: the write is already stored.
func publishChange(ctx context.Context, p Publisher, kind core.TransactionKind, action amqp.Action, userID, id core.ID, month core.MonthKey) {
	if p == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping transaction event",
			"kind", kind,
			"action", action)
		return
	}

	msg := amqp.NewTransactionChangedMessage(kind, action, userID, id, month)
	if err := p.PublishTransactionChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id,
			"kind", kind,
			"action", action,
			"error", err)
	}
}

// publishMove announces an update. When the transaction changed month the
// month it left is announced too, after the month it entered.
func publishMove(ctx context.Context, p Publisher, kind core.TransactionKind, userID, id core.ID, from, to core.MonthKey) {
	publishChange(ctx, p, kind, amqp.ActionUpdated, userID, id, to)
	if from != to {
		publishChange(ctx, p, kind, amqp.ActionUpdated, userID, id, from)
	}
}
