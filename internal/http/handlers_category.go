package http

import (
	"net/http"

	"fintrack/internal/services"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cats, err := s.deps.Categories.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, cats)
}

func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	userID, month, ok := s.monthScope(w, r)
	if !ok {
		return
	}
	stats, err := s.deps.Categories.Stats(r.Context(), userID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.LabelInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Categories.Create(r.Context(), userID, in), http.StatusCreated)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.LabelInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Categories.Update(r.Context(), userID, pathID(r), in), http.StatusOK)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Categories.Delete(r.Context(), userID, pathID(r)), http.StatusOK)
}

func (s *Server) handleCreateSubCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Categories.CreateSubCategory(r.Context(), userID, pathID(r), in.Name), http.StatusCreated)
}

func (s *Server) handleDeleteSubCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Categories.DeleteSubCategory(r.Context(), userID, pathID(r)), http.StatusOK)
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sources, err := s.deps.Sources.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, sources)
}

func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.LabelInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Sources.Create(r.Context(), userID, in), http.StatusCreated)
}

func (s *Server) handleUpdateSource(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.LabelInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Sources.Update(r.Context(), userID, pathID(r), in), http.StatusOK)
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, s.deps.Sources.Delete(r.Context(), userID, pathID(r)), http.StatusOK)
}
