package ledger

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"budgetbook/internal/core"
)

type (
	ExpenseInput struct {
		Amount   float64
		Category string
		// Date is any text form core.ParseDate accepts; it is stored as
		// YYYY-MM-DD and selects the month bucket.
		Date string
		Note string
	}

	// InstallmentInput splits Total into Payments monthly expenses
	// starting in the month of Date.
	InstallmentInput struct {
		Total    float64
		Payments int
		Category string
		Date     string
		Note     string
	}

	// ExpensePatch updates the non-nil fields of an expense.
	ExpensePatch struct {
		Amount   *float64
		Category *string
		Date     *string
		Note     *string
	}
)

// Expenses returns a copy of the month's expenses in insertion order.
func (l *Ledger) Expenses(user core.UserID, year, month int) []core.Expense {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return nil
	}
	list := monthExpenses(u, year, month)
	out := make([]core.Expense, 0, len(list))
	for _, e := range list {
		out = append(out, *e)
	}
	return out
}

// AddExpense stores a new expense under the month of its date and
// returns the assigned id.
func (l *Ledger) AddExpense(ctx context.Context, user core.UserID, in ExpenseInput) (string, error) {
	if strings.TrimSpace(in.Category) == "" {
		return "", core.ErrEmptyCategory
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return "", err
	}
	e := &core.Expense{
		ID:       l.newID(),
		Amount:   core.Amount(in.Amount),
		Category: in.Category,
		Date:     date.Format(core.DateLayout),
		Note:     in.Note,
	}
	key := core.MonthKey(date.Year(), int(date.Month()))
	_, err = l.mutate(ctx, user, func(u *core.User) (bool, error) {
		u.Expenses[key] = append(u.Expenses[key], e)
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// AddInstallments creates one rounded payment per month, each dated the
// 1st, with the note suffixed "(payment i/N)". It returns the new ids.
func (l *Ledger) AddInstallments(ctx context.Context, user core.UserID, in InstallmentInput) ([]string, error) {
	if strings.TrimSpace(in.Category) == "" {
		return nil, core.ErrEmptyCategory
	}
	start, err := core.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	n := in.Payments
	if n < 1 {
		n = 1
	}
	per := math.Round(in.Total / float64(n))

	var ids []string
	_, err = l.mutate(ctx, user, func(u *core.User) (bool, error) {
		year, month := start.Year(), int(start.Month())
		for i := 1; i <= n; i++ {
			note := fmt.Sprintf("payment %d/%d", i, n)
			if in.Note != "" {
				note = fmt.Sprintf("%s (%s)", in.Note, note)
			}
			e := &core.Expense{
				ID:       l.newID(),
				Amount:   core.Amount(per),
				Category: in.Category,
				Date:     core.FirstOfMonth(year, month),
				Note:     note,
			}
			key := core.MonthKey(year, month)
			u.Expenses[key] = append(u.Expenses[key], e)
			ids = append(ids, e.ID)
			year, month = core.NextMonth(year, month)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateExpense applies p to the expense id found in the given month.
// When the date moves to another month the expense moves bucket too.
// It reports false when id is not in that month.
func (l *Ledger) UpdateExpense(ctx context.Context, user core.UserID, year, month int, id string, p ExpensePatch) (bool, error) {
	var newDate string
	if p.Date != nil {
		d, err := core.ParseDate(*p.Date)
		if err != nil {
			return false, err
		}
		newDate = d.Format(core.DateLayout)
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return false, core.ErrEmptyCategory
	}
	return l.mutate(ctx, user, func(u *core.User) (bool, error) {
		key := core.MonthKey(year, month)
		e, idx := u.FindExpense(key, id)
		if e == nil {
			return false, nil
		}
		if p.Amount != nil {
			e.Amount = core.Amount(*p.Amount)
		}
		if p.Category != nil {
			e.Category = *p.Category
		}
		if p.Note != nil {
			e.Note = *p.Note
		}
		if newDate != "" {
			e.Date = newDate
			if dest := newDate[:7]; dest != key {
				list := u.Expenses[key]
				u.Expenses[key] = append(list[:idx], list[idx+1:]...)
				u.Expenses[dest] = append(u.Expenses[dest], e)
			}
		}
		return true, nil
	})
}

// DeleteExpense reports false when id is not in that month.
func (l *Ledger) DeleteExpense(ctx context.Context, user core.UserID, year, month int, id string) (bool, error) {
	return l.mutate(ctx, user, func(u *core.User) (bool, error) {
		key := core.MonthKey(year, month)
		_, idx := u.FindExpense(key, id)
		if idx < 0 {
			return false, nil
		}
		list := u.Expenses[key]
		u.Expenses[key] = append(list[:idx], list[idx+1:]...)
		return true, nil
	})
}

// Search matches expenses whose note contains q.Text (case-insensitive)
// or whose amount contains it as a substring, optionally restricted to a
// category. Results are ordered newest first.
func (l *Ledger) Search(q SearchQuery) []SearchResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	users := q.Users
	if len(users) == 0 {
		users = core.Users
	}
	text := strings.ToLower(strings.TrimSpace(q.Text))

	var out []SearchResult
	for _, id := range users {
		u := l.doc.Users[id]
		if u == nil {
			continue
		}
		for key, list := range u.Expenses {
			for _, e := range list {
				if q.Category != "" && e.Category != q.Category {
					continue
				}
				if text != "" && !strings.Contains(strings.ToLower(e.Note), text) &&
					!strings.Contains(strconv.FormatFloat(e.Amount.Float(), 'f', -1, 64), text) {
					continue
				}
				out = append(out, SearchResult{User: id, UserName: u.Name, MonthKey: key, Expense: *e})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Expense.Date != out[j].Expense.Date {
			return out[i].Expense.Date > out[j].Expense.Date
		}
		return out[i].Expense.ID < out[j].Expense.ID
	})
	return out
}
