package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ResponseBuilder assembles an enveloped JSON response.
type ResponseBuilder struct {
	status  int
	env     Envelope
	headers map[string]string
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		status:  http.StatusOK,
		env:     Envelope{Success: true},
		headers: make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.status = code
	return b
}

func (b *ResponseBuilder) Data(data any) *ResponseBuilder {
	b.env.Data = data
	return b
}

func (b *ResponseBuilder) Message(msg string) *ResponseBuilder {
	b.env.Message = msg
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Fail turns the response into an error with the given status and text.
func (b *ResponseBuilder) Fail(code int, msg string) *ResponseBuilder {
	b.status = code
	b.env.Success = false
	b.env.Error = msg
	b.env.Data = nil
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.status)
	_ = json.NewEncoder(w).Encode(b.env)
}

var errMalformedBody = errors.New("malformed request body")

// statusFor maps an error to its HTTP status. Validation is checked first
// so that a reference to another user's record in the input reads as bad
// input rather than a missing target.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrBudgetExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return auth.ErrMissingToken.Error()
	case errors.Is(err, auth.ErrInvalidToken):
		return auth.ErrInvalidToken.Error()
	case errors.Is(err, errMalformedBody):
		return errMalformedBody.Error()
	}
	return core.PublicMessage(err)
}

// ErrorResponse builds the envelope for err. Unclassified errors are logged
// here and reach the client only as "internal error".
func ErrorResponse(r *http.Request, err error) *ResponseBuilder {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentHTTP).ErrorContext(r.Context(),
			"Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err.Error())
	}
	return NewResponse().Fail(status, publicMessage(err))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ErrorResponse(r, err).Write(w)
}

func writeData(w http.ResponseWriter, status int, data any) {
	NewResponse().Status(status).Data(data).Write(w)
}

// writeResult renders a service outcome, using status on success.
func writeResult[T any](w http.ResponseWriter, r *http.Request, res core.Result[T], status int) {
	if !res.Success {
		err := res.Err
		if err == nil {
			err = errors.New(res.Error)
		}
		writeError(w, r, err)
		return
	}
	NewResponse().Status(status).Message(res.Message).Data(res.Data).Write(w)
}
