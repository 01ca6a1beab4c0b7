package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"invalid token", fmt.Errorf("%w: expired", auth.ErrInvalidToken), http.StatusUnauthorized},
		{"malformed body", fmt.Errorf("%w: eof", errMalformedBody), http.StatusBadRequest},
		{"validation", core.Invalid("title", errors.New("required")), http.StatusUnprocessableEntity},
		{"invalid month", core.ErrInvalidMonth, http.StatusUnprocessableEntity},
		{"invalid id", core.ErrInvalidID, http.StatusUnprocessableEntity},
		{"unowned reference", core.Invalid("categoryId", core.ErrNotFound), http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("get expense: %w", core.ErrNotFound), http.StatusNotFound},
		{"duplicate budget", core.ErrBudgetExists, http.StatusConflict},
		{"anything else", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestErrorResponseHidesInternals(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets", nil)
	rec := httptest.NewRecorder()
	writeError(rec, req, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "internal error", env.Error)
}

func TestResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponse().
		Status(http.StatusCreated).
		Message("created").
		Header("Location", "/api/v1/expenses/1").
		Data(map[string]int{"n": 1}).
		Write(rec)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/v1/expenses/1", rec.Header().Get("Location"))
	assert.JSONEq(t, `{"success":true,"message":"created","data":{"n":1}}`, rec.Body.String())
}

func TestWriteResult(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", nil)

	rec := httptest.NewRecorder()
	writeResult(rec, req, core.Fail[core.Budget](core.ErrBudgetExists), http.StatusCreated)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	writeResult(rec, req, core.Ok(core.Budget{ID: "b1"}, "Budget created"), http.StatusCreated)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Budget created"`)
}
