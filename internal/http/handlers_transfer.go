package http

import (
	"fmt"
	"net/http"
	"strings"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
)

func (s *Server) handleHousehold(w http.ResponseWriter, r *http.Request) {
	year, month, err := queryYearMonth(r, s.ledger.Now())
	if err != nil {
		s.fail(w, r, "household", err)
		return
	}
	v, err := s.ledger.Household(year, month)
	if err != nil {
		s.fail(w, r, "household", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r.PathValue("year"))
	if err != nil {
		s.fail(w, r, "comparison", err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.UserComparison(year))
}

// handleSearch takes ?q=, ?category= and any number of ?user=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := ledger.SearchQuery{
		Text:     strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	for _, raw := range q["user"] {
		id, err := core.ParseUserID(raw)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		query.Users = append(query.Users, id)
	}
	results := s.ledger.Search(query)
	if results == nil {
		results = []ledger.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.ledger.ExportJSON()
	if err != nil {
		s.fail(w, r, log.OpExport, err)
		return
	}
	name := fmt.Sprintf("budgetbook-%s.json", s.ledger.Now().Format(core.DateLayout))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImport replaces the whole store. A body without a users
// collection is rejected with 400 and leaves the store untouched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r, maxImportBytes)
	if err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}
	ok, err := s.ledger.ImportJSON(r.Context(), data)
	if err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "document rejected")
		return
	}
	writeResult(w, true)
}

func (s *Server) handleSheetsExport(w http.ResponseWriter, r *http.Request, user core.UserID) {
	if s.workbooks == nil {
		writeError(w, http.StatusServiceUnavailable, "sheets backend not configured")
		return
	}
	wb, err := s.ledger.ExportWorkbook(user)
	if err != nil {
		s.fail(w, r, "sheets_export", err)
		return
	}
	if err := s.workbooks.WriteWorkbook(r.Context(), user, wb); err != nil {
		s.fail(w, r, "sheets_export", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sheets": len(wb.Sheets)})
}

func (s *Server) handleSheetsImport(w http.ResponseWriter, r *http.Request, user core.UserID) {
	if s.workbooks == nil {
		writeError(w, http.StatusServiceUnavailable, "sheets backend not configured")
		return
	}
	wb, err := s.workbooks.ReadWorkbook(r.Context(), user)
	if err != nil {
		s.fail(w, r, "sheets_import", err)
		return
	}
	res, err := s.ledger.ImportWorkbook(r.Context(), user, wb)
	if err != nil {
		s.fail(w, r, "sheets_import", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
