package core

import "errors"

// Result is the explicit outcome returned to callers of write operations.
// Err keeps the classified cause for the transport layer and is never
// serialised.
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    T      `json:"data,omitempty"`
	Err     error  `json:"-"`
}

// Ok wraps a successful outcome.
func Ok[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Message: message, Data: data}
}

// Fail wraps a failure. Infrastructure failures get an opaque message so
// driver details never reach the caller.
func Fail[T any](err error) Result[T] {
	return Result[T]{Success: false, Error: PublicMessage(err), Err: err}
}

// PublicMessage returns the caller-facing text for err.
func PublicMessage(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Err.Error()
	case IsValidation(err):
		for _, known := range []error{ErrInvalidMonth, ErrInvalidID, ErrInvalidDate, ErrInvalidAmount} {
			if errors.Is(err, known) {
				return known.Error()
			}
		}
		return ErrValidation.Error()
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrBudgetExists):
		return ErrBudgetExists.Error()
	default:
		return "internal error"
	}
}
