package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"budgetbook/internal/core"
)

const (
	colIndex          = "#"
	colCategory       = "Category"
	colYear           = "Year"
	colMonth          = "Month"
	colIncome         = "Income"
	colPlannedSavings = "Planned savings"
	colDate           = "Date"
	colAmount         = "Amount"
	colNote           = "Note"
)

// ExportWorkbook renders one user as three sheets: categories, one row
// per forecast month with a budget column per live category, and every
// expense flattened. Forecasts and Expenses are omitted when empty.
func (l *Ledger) ExportWorkbook(user core.UserID) (core.Workbook, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return core.Workbook{}, err
	}

	cats := core.Sheet{Name: core.SheetCategories, Header: []string{colIndex, colCategory}}
	for i, c := range u.Categories {
		cats.Rows = append(cats.Rows, []any{float64(i + 1), c})
	}
	wb := core.Workbook{Sheets: []core.Sheet{cats}}

	forecasts := core.Sheet{
		Name:   core.SheetForecasts,
		Header: []string{colYear, colMonth, colIncome, colPlannedSavings},
	}
	for _, c := range u.Categories {
		forecasts.Header = append(forecasts.Header, core.BudgetColumnPrefix+c)
	}
	for _, yk := range sortedKeys(u.Forecasts) {
		year, err := strconv.Atoi(yk)
		if err != nil {
			continue
		}
		for _, mk := range sortedKeys(u.Forecasts[yk]) {
			month, err := strconv.Atoi(mk)
			if err != nil {
				continue
			}
			f := u.Forecasts[yk][mk]
			row := []any{float64(year), float64(month), f.Income.Float(), f.PlannedSavings.Float()}
			for _, c := range u.Categories {
				row = append(row, f.Budget(c))
			}
			forecasts.Rows = append(forecasts.Rows, row)
		}
	}
	if len(forecasts.Rows) > 0 {
		wb.Sheets = append(wb.Sheets, forecasts)
	}

	expenses := core.Sheet{
		Name:   core.SheetExpenses,
		Header: []string{colDate, colCategory, colAmount, colNote},
	}
	for _, key := range sortedKeys(u.Expenses) {
		for _, e := range u.Expenses[key] {
			expenses.Rows = append(expenses.Rows, []any{e.Date, e.Category, e.Amount.Float(), e.Note})
		}
	}
	if len(expenses.Rows) > 0 {
		wb.Sheets = append(wb.Sheets, expenses)
	}
	return wb, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ImportWorkbook merges a workbook into one user: new categories are
// added, forecast rows overwrite the cells they carry and expense rows
// are appended. Expense rows need a date and an amount; dates may be text
// or spreadsheet serials. The document is persisted once.
func (l *Ledger) ImportWorkbook(ctx context.Context, user core.UserID, wb core.Workbook) (TabularImportResult, error) {
	var res TabularImportResult
	_, err := l.mutate(ctx, user, func(u *core.User) (bool, error) {
		if s := wb.Sheet(core.SheetCategories); s != nil {
			res.Categories = importCategories(u, s)
		}
		if s := wb.Sheet(core.SheetForecasts); s != nil {
			n, skipped := importForecasts(u, s)
			res.Forecasts += n
			res.Skipped += skipped
		}
		if s := wb.Sheet(core.SheetExpenses); s != nil {
			n, skipped := l.importExpenses(u, s)
			res.Expenses += n
			res.Skipped += skipped
		}
		return true, nil
	})
	if err != nil {
		return res, err
	}
	l.logger.InfoContext(ctx, "Workbook imported",
		"user", user, "categories", res.Categories, "forecasts", res.Forecasts,
		"expenses", res.Expenses, "skipped", res.Skipped)
	return res, nil
}

func importCategories(u *core.User, s *core.Sheet) int {
	col := s.Column(colCategory)
	var added int
	for _, row := range s.Rows {
		name := cellString(core.Cell(row, col))
		if name == "" || u.HasCategory(name) {
			continue
		}
		u.Categories = append(u.Categories, name)
		added++
	}
	return added
}

func importForecasts(u *core.User, s *core.Sheet) (imported, skipped int) {
	yearCol, monthCol := s.Column(colYear), s.Column(colMonth)
	incomeCol, savingsCol := s.Column(colIncome), s.Column(colPlannedSavings)
	budgetCols := map[int]string{}
	for i, h := range s.Header {
		if name, ok := strings.CutPrefix(h, core.BudgetColumnPrefix); ok && name != "" {
			budgetCols[i] = name
		}
	}
	for _, row := range s.Rows {
		year, okY := cellNumber(core.Cell(row, yearCol))
		month, okM := cellNumber(core.Cell(row, monthCol))
		if !okY || !okM || !core.ValidMonth(int(month)) {
			skipped++
			continue
		}
		f := forecastFor(u, int(year), int(month))
		if v, ok := cellNumber(core.Cell(row, incomeCol)); ok {
			f.Income = core.Amount(v)
		}
		if v, ok := cellNumber(core.Cell(row, savingsCol)); ok {
			f.PlannedSavings = core.Amount(v)
		}
		for col, name := range budgetCols {
			if v, ok := cellNumber(core.Cell(row, col)); ok {
				f.Budgets[name] = core.Amount(v)
			}
		}
		imported++
	}
	return imported, skipped
}

func (l *Ledger) importExpenses(u *core.User, s *core.Sheet) (imported, skipped int) {
	dateCol, catCol := s.Column(colDate), s.Column(colCategory)
	amountCol, noteCol := s.Column(colAmount), s.Column(colNote)
	for _, row := range s.Rows {
		rawDate, rawAmount := core.Cell(row, dateCol), core.Cell(row, amountCol)
		if cellString(rawDate) == "" || cellString(rawAmount) == "" {
			skipped++
			continue
		}
		date, err := core.NormalizeDate(rawDate)
		if err != nil {
			skipped++
			continue
		}
		amount, _ := cellNumber(rawAmount)
		if amount == 0 {
			skipped++
			continue
		}
		category := cellString(core.Cell(row, catCol))
		if category == "" {
			category = core.DefaultImportCategory
		}
		e := &core.Expense{
			ID:       l.newID(),
			Amount:   core.Amount(amount),
			Category: category,
			Date:     date,
			Note:     cellString(core.Cell(row, noteCol)),
		}
		key := date[:7]
		u.Expenses[key] = append(u.Expenses[key], e)
		imported++
	}
	return imported, skipped
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func cellNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	default:
		p := core.ParseOptionalAmount(cellString(val))
		if p == nil {
			return 0, false
		}
		return *p, true
	}
}
