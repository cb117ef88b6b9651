package http

import (
	"net/http"
	"slices"
	"strings"

	"budgetbook/internal/core"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, user core.UserID) {
	cats := s.ledger.Categories(user)
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// handleAddCategory answers 409 when the name already exists.
func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request, user core.UserID) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "add_category", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.fail(w, r, "add_category", core.ErrEmptyCategory)
		return
	}
	ok, err := s.ledger.AddCategory(r.Context(), user, req.Name)
	if err != nil {
		s.fail(w, r, "add_category", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, errorResponse{OK: false, Error: "category exists"})
		return
	}
	writeJSON(w, http.StatusCreated, errorResponse{OK: true})
}

// handleRenameCategory cascades the rename into budgets and expenses.
// A missing source is 404; a taken or empty target is 409.
func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request, user core.UserID) {
	oldName := r.PathValue("name")
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "rename_category", err)
		return
	}
	if !slices.Contains(s.ledger.Categories(user), oldName) {
		writeResult(w, false)
		return
	}
	ok, err := s.ledger.RenameCategory(r.Context(), user, oldName, req.Name)
	if err != nil {
		s.fail(w, r, "rename_category", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, errorResponse{OK: false, Error: "category cannot be renamed"})
		return
	}
	writeResult(w, true)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, user core.UserID) {
	ok, err := s.ledger.DeleteCategory(r.Context(), user, r.PathValue("name"))
	if err != nil {
		s.fail(w, r, "delete_category", err)
		return
	}
	writeResult(w, ok)
}

// handleCategoryStats returns stats for every category, or for the one
// named by ?category=.
func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request, user core.UserID) {
	if name := r.URL.Query().Get("category"); name != "" {
		writeJSON(w, http.StatusOK, s.ledger.CategoryStats(user, name))
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.CategoryStatsAll(user))
}
