package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"budgetbook/internal/core"
)

type forecastRequest struct {
	Income *core.Amount `json:"income"`
	// ActualIncome is kept raw so an explicit null can clear it.
	ActualIncome   json.RawMessage `json:"actualIncome"`
	PlannedSavings *core.Amount    `json:"plannedSavings"`
}

type budgetRequest struct {
	Category string      `json:"category"`
	Amount   core.Amount `json:"amount"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := queryYearMonth(r, s.ledger.Now())
	if err != nil {
		s.fail(w, r, "dashboard", err)
		return
	}
	d, err := s.ledger.MonthDashboard(user, year, month)
	if err != nil {
		s.fail(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request, user core.UserID) {
	o, err := s.ledger.Overview(user)
	if err != nil {
		s.fail(w, r, "overview", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request, user core.UserID) {
	months := s.ledger.MonthsWithData(user)
	if months == nil {
		months = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": months})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, err := parseYear(r.PathValue("year"))
	if err != nil {
		s.fail(w, r, "analytics", err)
		return
	}
	a, err := s.ledger.YearlyAnalytics(user, year)
	if err != nil {
		s.fail(w, r, "analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGetForecast(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "get_forecast", err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Forecast(user, year, month))
}

// handlePutForecast applies the fields present in the body. Absent
// fields are left alone.
func (s *Server) handlePutForecast(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "put_forecast", err)
		return
	}
	var req forecastRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "put_forecast", err)
		return
	}

	ctx := r.Context()
	if req.Income != nil {
		if err := s.ledger.SetIncome(ctx, user, year, month, req.Income.Float()); err != nil {
			s.fail(w, r, "put_forecast", err)
			return
		}
	}
	if len(req.ActualIncome) > 0 {
		// null and non-numeric values both clear the recorded actual income.
		actual := core.DecodeOptionalAmount(req.ActualIncome)
		if err := s.ledger.SetActualIncome(ctx, user, year, month, actual); err != nil {
			s.fail(w, r, "put_forecast", err)
			return
		}
	}
	if req.PlannedSavings != nil {
		if err := s.ledger.SetPlannedSavings(ctx, user, year, month, req.PlannedSavings.Float()); err != nil {
			s.fail(w, r, "put_forecast", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.ledger.Forecast(user, year, month))
}

func (s *Server) handlePutBudget(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "put_budget", err)
		return
	}
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "put_budget", err)
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		s.fail(w, r, "put_budget", core.ErrEmptyCategory)
		return
	}
	if err := s.ledger.SetBudget(r.Context(), user, year, month, req.Category, req.Amount.Float()); err != nil {
		s.fail(w, r, "put_budget", err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Forecast(user, year, month))
}

func (s *Server) handleCopyBudget(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "copy_budget", err)
		return
	}
	if err := s.ledger.CopyBudgetToYear(r.Context(), user, year, month); err != nil {
		s.fail(w, r, "copy_budget", err)
		return
	}
	writeResult(w, true)
}

func (s *Server) handleCopyIncome(w http.ResponseWriter, r *http.Request, user core.UserID) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, "copy_income", err)
		return
	}
	if err := s.ledger.CopyIncomeToYear(r.Context(), user, year, month); err != nil {
		s.fail(w, r, "copy_income", err)
		return
	}
	writeResult(w, true)
}
