package http

import (
	"net/http"

	"pnltracker/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	respondJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = ""

	stored, err := s.categories.Create(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = r.PathValue("id")

	updated, err := s.categories.Update(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusNoContent, nil)
}
