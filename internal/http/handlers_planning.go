package http

import (
	"net/http"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
)

type savingsRequest struct {
	Kind   core.SavingsKind `json:"kind"`
	Amount core.Amount      `json:"amount"`
}

type recurringRequest struct {
	Category string      `json:"category"`
	Amount   core.Amount `json:"amount"`
	Note     string      `json:"note"`
}

type goalRequest struct {
	Name         string      `json:"name"`
	TargetAmount core.Amount `json:"targetAmount"`
	SavedAmount  core.Amount `json:"savedAmount"`
	Note         string      `json:"note"`
}

type goalPatchRequest struct {
	Name         *string      `json:"name"`
	TargetAmount *core.Amount `json:"targetAmount"`
	SavedAmount  *core.Amount `json:"savedAmount"`
	Note         *string      `json:"note"`
}

func (s *Server) handleGetSavings(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "get_savings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"savings": s.ledger.ActualSavings(user, year, month),
		"summary": s.ledger.SavingsSummary(user, year, month),
	})
}

func (s *Server) handlePutSavings(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "put_savings", err)
		return
	}
	var req savingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "put_savings", err)
		return
	}
	if err := s.ledger.SetActualSavings(r.Context(), user, year, month, req.Kind, req.Amount.Float()); err != nil {
		s.fail(w, r, "put_savings", err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.ActualSavings(user, year, month))
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request, user core.UserID) {
	writeJSON(w, http.StatusOK, s.ledger.RecurringTemplates(user))
}

func (s *Server) handleAddRecurring(w http.ResponseWriter, r *http.Request, user core.UserID) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "add_recurring", err)
		return
	}
	id, err := s.ledger.AddRecurringTemplate(r.Context(), user, core.RecurringTemplate{
		Category: req.Category,
		Amount:   req.Amount,
		Note:     req.Note,
	})
	if err != nil {
		s.fail(w, r, "add_recurring", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": id})
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request, user core.UserID) {
	ok, err := s.ledger.DeleteRecurringTemplate(r.Context(), user, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "delete_recurring", err)
		return
	}
	writeResult(w, ok)
}

// handleApplyRecurring is not idempotent: each call appends every
// template again.
func (s *Server) handleApplyRecurring(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "apply_recurring", err)
		return
	}
	n, err := s.ledger.ApplyRecurringToMonth(r.Context(), user, year, month)
	if err != nil {
		s.fail(w, r, "apply_recurring", err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Recurring templates applied",
		log.NewFields().WithMonth(user.String(), year, month).ToSlice()...)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "applied": n})
}

// handleListWishlist returns each goal with its progress against the
// savings of ?year= (default: the current year).
func (s *Server) handleListWishlist(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, err := queryYear(r, s.ledger.Now())
	if err != nil {
		s.fail(w, r, "list_wishlist", err)
		return
	}
	progress := s.ledger.WishlistProgress(user, year)
	if progress == nil {
		progress = []ledger.GoalProgress{}
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleAddWishlist(w http.ResponseWriter, r *http.Request, user core.UserID) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "add_wishlist", err)
		return
	}
	id, err := s.ledger.AddWishlistGoal(r.Context(), user, core.WishlistGoal{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		SavedAmount:  req.SavedAmount,
		Note:         req.Note,
	})
	if err != nil {
		s.fail(w, r, "add_wishlist", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": id})
}

func (s *Server) handleUpdateWishlist(w http.ResponseWriter, r *http.Request, user core.UserID) {
	var req goalPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "update_wishlist", err)
		return
	}
	ok, err := s.ledger.UpdateWishlistGoal(r.Context(), user, r.PathValue("id"), ledger.GoalPatch{
		Name:         req.Name,
		TargetAmount: floatPtr(req.TargetAmount),
		SavedAmount:  floatPtr(req.SavedAmount),
		Note:         req.Note,
	})
	if err != nil {
		s.fail(w, r, "update_wishlist", err)
		return
	}
	writeResult(w, ok)
}

func (s *Server) handleDeleteWishlist(w http.ResponseWriter, r *http.Request, user core.UserID) {
	ok, err := s.ledger.DeleteWishlistGoal(r.Context(), user, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "delete_wishlist", err)
		return
	}
	writeResult(w, ok)
}
