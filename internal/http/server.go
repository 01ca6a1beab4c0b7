// Package http serves the JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/auth"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

// Deps are the collaborators the API is built from.
type Deps struct {
	Budgets    *services.BudgetService
	Expenses   *services.ExpenseService
	Incomes    *services.IncomeService
	Categories *services.CategoryService
	Sources    *services.IncomeSourceService
	Dashboard  *services.DashboardService
	Reports    *report.Builder

	Verifier *auth.Verifier
	Logger   *applog.Logger

	// Ready reports whether dependencies (the store) are reachable.
	Ready func(ctx context.Context) error

	RequestTimeout time.Duration
	RateLimit      int
	Now            func() time.Time
}

type Server struct {
	http.Server
	deps      Deps
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	startedAt time.Time
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 7 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	deps.Logger = deps.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		deps:      deps,
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimit}),
		startedAt: deps.Now(),
	}
	s.tracer = trace.NewMiddleware(deps.Logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// exports render inside the request timeout, leave headroom for the write
		WriteTimeout: deps.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("GET /api/v1/months", s.handleMonths)

	api.HandleFunc("GET /api/v1/dashboard", s.handleDashboard)
	api.HandleFunc("GET /api/v1/dashboard/summary", s.handleDashboardSummary)
	api.HandleFunc("GET /api/v1/dashboard/daily", s.handleDashboardDaily)
	api.HandleFunc("GET /api/v1/dashboard/trend.png", s.handleTrendChart)
	api.HandleFunc("GET /api/v1/transactions/recent", s.handleRecentTransactions)

	api.HandleFunc("GET /api/v1/budgets", s.handleBudgetPage)
	api.HandleFunc("POST /api/v1/budgets", s.handleCreateBudget)
	api.HandleFunc("PUT /api/v1/budgets/{id}", s.handleUpdateBudget)
	api.HandleFunc("DELETE /api/v1/budgets/{id}", s.handleDeleteBudget)

	api.HandleFunc("GET /api/v1/expenses", s.handleListExpenses)
	api.HandleFunc("POST /api/v1/expenses", s.handleCreateExpense)
	api.HandleFunc("GET /api/v1/expenses/{id}", s.handleGetExpense)
	api.HandleFunc("PUT /api/v1/expenses/{id}", s.handleUpdateExpense)
	api.HandleFunc("DELETE /api/v1/expenses/{id}", s.handleDeleteExpense)

	api.HandleFunc("GET /api/v1/incomes", s.handleListIncomes)
	api.HandleFunc("POST /api/v1/incomes", s.handleCreateIncome)
	api.HandleFunc("GET /api/v1/incomes/{id}", s.handleGetIncome)
	api.HandleFunc("PUT /api/v1/incomes/{id}", s.handleUpdateIncome)
	api.HandleFunc("DELETE /api/v1/incomes/{id}", s.handleDeleteIncome)

	api.HandleFunc("GET /api/v1/categories", s.handleListCategories)
	api.HandleFunc("POST /api/v1/categories", s.handleCreateCategory)
	api.HandleFunc("GET /api/v1/categories/stats", s.handleCategoryStats)
	api.HandleFunc("PUT /api/v1/categories/{id}", s.handleUpdateCategory)
	api.HandleFunc("DELETE /api/v1/categories/{id}", s.handleDeleteCategory)
	api.HandleFunc("POST /api/v1/categories/{id}/subcategories", s.handleCreateSubCategory)
	api.HandleFunc("DELETE /api/v1/subcategories/{id}", s.handleDeleteSubCategory)

	api.HandleFunc("GET /api/v1/income-sources", s.handleListSources)
	api.HandleFunc("POST /api/v1/income-sources", s.handleCreateSource)
	api.HandleFunc("PUT /api/v1/income-sources/{id}", s.handleUpdateSource)
	api.HandleFunc("DELETE /api/v1/income-sources/{id}", s.handleDeleteSource)

	api.HandleFunc("GET /api/v1/export.xlsx", s.handleExportWorkbook)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("/api/v1/", auth.Middleware(s.deps.Verifier, writeError)(api))

	var h http.Handler = mux
	h = s.withTimeout(h)
	h = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.WritesOnly, s.onRateLimit)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

func (s *Server) withTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.deps.RequestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	NewResponse().Fail(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.deps.Now().UTC().Format(time.RFC3339),
		"uptime":    s.deps.Now().Sub(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{
		"rate_limiter": map[string]any{"active_clients": s.limiter.ActiveClients()},
	}
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
			NewResponse().Fail(http.StatusServiceUnavailable, "not ready").Write(w)
			return
		}
	}
	checks["store"] = "ok"
	writeData(w, http.StatusOK, map[string]any{"status": "ready", "checks": checks})
}
