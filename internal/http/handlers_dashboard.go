package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// monthScope resolves the caller and the month query parameter, writing the
// error response itself when either is missing or malformed.
func (s *Server) monthScope(w http.ResponseWriter, r *http.Request) (core.ID, core.MonthKey, bool) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return "", core.MonthKey{}, false
	}
	month, err := MonthParam(r, s.deps.Now())
	if err != nil {
		writeError(w, r, err)
		return "", core.MonthKey{}, false
	}
	return userID, month, true
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	month, err := MonthParam(r, s.deps.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"month":    month,
		"label":    month.Label(),
		"previous": month.Prev(),
		"next":     month.Next(),
		"current":  core.CurrentMonth(s.deps.Now()),
		"options":  core.MonthOptions(s.deps.Now()),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, month, ok := s.monthScope(w, r)
	if !ok {
		return
	}
	overview, err := s.deps.Dashboard.Overview(r.Context(), userID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, overview)
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	userID, month, ok := s.monthScope(w, r)
	if !ok {
		return
	}
	summary, err := s.deps.Dashboard.Summary(r.Context(), userID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (s *Server) handleDashboardDaily(w http.ResponseWriter, r *http.Request) {
	userID, month, ok := s.monthScope(w, r)
	if !ok {
		return
	}
	daily, err := s.deps.Dashboard.Daily(r.Context(), userID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, daily)
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	userID, month, ok := s.monthScope(w, r)
	if !ok {
		return
	}
	daily, err := s.deps.Dashboard.Daily(r.Context(), userID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	png, err := report.RenderDailyTrend(month, daily)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := LimitParam(r, 100)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.deps.Dashboard.RecentTransactions(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}
