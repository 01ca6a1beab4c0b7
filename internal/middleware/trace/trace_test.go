package trace

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "fintrack/internal/log"
)

func newLogger(buf *bytes.Buffer) *applog.Logger {
	return applog.New(applog.Config{Format: "json", Component: applog.ComponentHTTP, Output: buf})
}

func TestGenerateRequestID(t *testing.T) {
	id := GenerateRequestID()
	if !strings.HasPrefix(id, "req_") || len(id) != 20 {
		t.Fatalf("unexpected id %q", id)
	}
	if id == GenerateRequestID() {
		t.Fatal("ids should differ")
	}
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	m := NewMiddleware(newLogger(&buf), func(*http.Request) string { return "203.0.113.7" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		applog.FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/expenses/x", nil))

	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}

	var sawHandler, sawEnd bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		if entry[applog.FieldRequestID] != seen {
			t.Errorf("log line without request id: %s", line)
		}
		switch entry["msg"] {
		case "inside handler":
			sawHandler = true
		case "HTTP request completed":
			sawEnd = true
			if entry["level"] != "WARN" || entry[applog.FieldStatusCode] != float64(404) {
				t.Errorf("unexpected completion entry %v", entry)
			}
		}
	}
	if !sawHandler || !sawEnd {
		t.Fatalf("missing log entries: %s", buf.String())
	}
	if m.GetMetrics().TotalRequests != 1 {
		t.Fatalf("request not counted")
	}
}

func TestMiddlewareHonoursIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	m := NewMiddleware(newLogger(&buf), nil)
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set(RequestIDHeader, "bad id with spaces")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if got := rec.Header().Get(RequestIDHeader); !strings.HasPrefix(got, "req_") {
		t.Fatalf("invalid incoming id should be replaced, got %q", got)
	}
}
