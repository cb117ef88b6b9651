package http

import (
	"net/http"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
)

type expenseRequest struct {
	Amount   core.Amount `json:"amount"`
	Category string      `json:"category"`
	Date     string      `json:"date"`
	Note     string      `json:"note"`
}

type expensePatchRequest struct {
	Amount   *core.Amount `json:"amount"`
	Category *string      `json:"category"`
	Date     *string      `json:"date"`
	Note     *string      `json:"note"`
}

type installmentRequest struct {
	Total    core.Amount `json:"total"`
	Payments int         `json:"payments"`
	Category string      `json:"category"`
	Date     string      `json:"date"`
	Note     string      `json:"note"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "list_expenses", err)
		return
	}
	list := s.ledger.Expenses(user, year, month)
	if list == nil {
		list = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCreateExpense files the expense under the month of its date. An
// empty date means the first of the month in the path.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "create_expense", err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "create_expense", err)
		return
	}
	if req.Date == "" {
		req.Date = core.FirstOfMonth(year, month)
	}
	id, err := s.ledger.AddExpense(r.Context(), user, ledger.ExpenseInput{
		Amount:   req.Amount.Float(),
		Category: req.Category,
		Date:     req.Date,
		Note:     req.Note,
	})
	if err != nil {
		s.fail(w, r, "create_expense", err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense created",
		log.FieldUser, user.String(),
		log.FieldOperation, log.OpCreate,
		"id", id)
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": id})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "update_expense", err)
		return
	}
	var req expensePatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "update_expense", err)
		return
	}
	ok, err := s.ledger.UpdateExpense(r.Context(), user, year, month, r.PathValue("id"), ledger.ExpensePatch{
		Amount:   floatPtr(req.Amount),
		Category: req.Category,
		Date:     req.Date,
		Note:     req.Note,
	})
	if err != nil {
		s.fail(w, r, "update_expense", err)
		return
	}
	writeResult(w, ok)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "delete_expense", err)
		return
	}
	ok, err := s.ledger.DeleteExpense(r.Context(), user, year, month, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "delete_expense", err)
		return
	}
	writeResult(w, ok)
}

func (s *Server) handleInstallments(w http.ResponseWriter, r *http.Request, user core.UserID) {
	var req installmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "installments", err)
		return
	}
	ids, err := s.ledger.AddInstallments(r.Context(), user, ledger.InstallmentInput{
		Total:    req.Total.Float(),
		Payments: req.Payments,
		Category: req.Category,
		Date:     req.Date,
		Note:     req.Note,
	})
	if err != nil {
		s.fail(w, r, "installments", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "ids": ids})
}
