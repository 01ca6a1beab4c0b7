package services

import (
	"context"
	"errors"
	"log/slog"

	"fintrack/internal/core"
)

// fail builds a failed outcome. Only infrastructure failures are logged;
// caller mistakes are reported back without noise.
func fail[T any](ctx context.Context, op string, err error) core.Result[T] {
	if !isExpected(err) {
		slog.ErrorContext(ctx, "Operation failed", "op", op, "error", err)
	}
	return core.Fail[T](err)
}

func isExpected(err error) bool {
	return core.IsValidation(err) ||
		errors.Is(err, core.ErrNotFound) ||
		errors.Is(err, core.ErrBudgetExists)
}

func requireMonth(m core.MonthKey) error {
	if m.IsZero() {
		return core.ErrInvalidMonth
	}
	return nil
}

// normalizeID canonicalizes a caller-supplied record ID. Empty stays empty.
func normalizeID(field string, id core.ID) (core.ID, error) {
	if id.IsZero() {
		return "", nil
	}
	parsed, err := core.ParseID(string(id))
	if err != nil {
		return "", core.Invalid(field, core.ErrInvalidID)
	}
	return parsed, nil
}

// targetID canonicalizes the ID of the record an operation acts on.
func targetID(id core.ID) (core.ID, error) {
	return core.ParseID(string(id))
}
