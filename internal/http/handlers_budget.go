package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func (s *Server) handleBudgetPage(w http.ResponseWriter, r *http.Request) {
	userID, month, ok := s.monthScope(w, r)
	if !ok {
		return
	}
	page, err := s.deps.Budgets.Page(r.Context(), userID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page.Options = core.MonthOptions(s.deps.Now())
	writeData(w, http.StatusOK, page)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.BudgetInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Budgets.Create(r.Context(), userID, in), http.StatusCreated)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.BudgetUpdate
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Budgets.Update(r.Context(), userID, pathID(r), in), http.StatusOK)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Budgets.Delete(r.Context(), userID, pathID(r)), http.StatusOK)
}
