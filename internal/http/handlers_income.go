package http

import (
	"net/http"

	"fintrack/internal/services"
)

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	userID, month, ok := s.monthScope(w, r)
	if !ok {
		return
	}
	items, err := s.deps.Incomes.List(r.Context(), userID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := s.deps.Incomes.Get(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.IncomeInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Incomes.Create(r.Context(), userID, in), http.StatusCreated)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.IncomeInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Incomes.Update(r.Context(), userID, pathID(r), in), http.StatusOK)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Incomes.Delete(r.Context(), userID, pathID(r)), http.StatusOK)
}
