package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

const maxBodyBytes = 64 << 10

// MonthParam reads ?month=YYYY-MM. An absent value means the current UTC
// month; a malformed one is a validation error.
func MonthParam(r *http.Request, now time.Time) (core.MonthKey, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return core.CurrentMonth(now), nil
	}
	return core.ParseMonthKey(v)
}

// LimitParam reads ?limit=N within 1..max, falling back to 0 (service
// default) when absent.
func LimitParam(r *http.Request, max int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > max {
		return 0, core.Invalid("limit", fmt.Errorf("limit must be between 1 and %d", max))
	}
	return n, nil
}

// DecodeJSON reads a single JSON object into dst. Unknown fields are
// rejected. Errors raised by domain decoders (amounts, dates, months) keep
// their validation meaning; anything else is a malformed body.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if core.IsValidation(err) {
			return err
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return nil
}

func pathID(r *http.Request) core.ID {
	return core.ID(r.PathValue("id"))
}

// currentUser is set by the auth middleware on every /api/v1 route.
func currentUser(r *http.Request) (core.ID, error) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		return "", auth.ErrMissingToken
	}
	return id, nil
}
