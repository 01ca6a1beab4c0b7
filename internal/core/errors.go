package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	ErrInvalidMonth    = errors.New("invalid month format (YYYY-MM)")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrAmountTooLarge  = errors.New("amount is too large")
	ErrLimitOutOfRange = errors.New("budget limit must be between 0.01 and 999999.99")
	ErrEmptyTitle      = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title must not exceed 100 characters")
	ErrNoteTooLong     = errors.New("note is too long")
	ErrEmptyName       = errors.New("name is required")
	ErrNameTooLong     = errors.New("name must not exceed 50 characters")
	ErrIconTooLong     = errors.New("icon must not exceed 50 characters")
	ErrInvalidColor    = errors.New("color must be a #RRGGBB hex value")
	ErrMissingCategory = errors.New("category is required")
	ErrMissingSource   = errors.New("income source is required")
	ErrInvalidID       = errors.New("invalid id")

	ErrSubCategoryMismatch = errors.New("sub-category does not belong to the category")

	// ErrNotFound covers both a missing record and a record owned by
	// another user. Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found or no permission")

	// ErrBudgetExists reports a second budget for the same
	// (user, category, sub-category, month) tuple.
	ErrBudgetExists = errors.New("budget already exists for this category and month")
)

// ValidationError ties a rejected input field to its cause.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid marks err as a problem with the named input field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err is a caller input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidAmount)
}
