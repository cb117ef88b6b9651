package ledger

import (
	"context"

	"budgetbook/internal/core"
)

// RecurringNoteSuffix marks expenses created from a recurring template.
const RecurringNoteSuffix = " (recurring)"

func (l *Ledger) RecurringTemplates(user core.UserID) []core.RecurringTemplate {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return nil
	}
	out := make([]core.RecurringTemplate, 0, len(u.RecurringExpenses))
	for _, t := range u.RecurringExpenses {
		out = append(out, *t)
	}
	return out
}

// AddRecurringTemplate stores a template and returns its new id.
func (l *Ledger) AddRecurringTemplate(ctx context.Context, user core.UserID, t core.RecurringTemplate) (string, error) {
	if t.Category == "" {
		return "", core.ErrEmptyCategory
	}
	t.ID = l.newID()
	_, err := l.mutate(ctx, user, func(u *core.User) (bool, error) {
		u.RecurringExpenses = append(u.RecurringExpenses, &t)
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// DeleteRecurringTemplate reports false when id is unknown.
func (l *Ledger) DeleteRecurringTemplate(ctx context.Context, user core.UserID, id string) (bool, error) {
	return l.mutate(ctx, user, func(u *core.User) (bool, error) {
		for i, t := range u.RecurringExpenses {
			if t.ID == id {
				u.RecurringExpenses = append(u.RecurringExpenses[:i], u.RecurringExpenses[i+1:]...)
				return true, nil
			}
		}
		return false, nil
	})
}

// ApplyRecurringToMonth appends one expense per template, dated the 1st
// of the month, and returns how many were added. Calling it twice for the
// same month adds every template twice.
func (l *Ledger) ApplyRecurringToMonth(ctx context.Context, user core.UserID, year, month int) (int, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	var applied int
	_, err := l.mutate(ctx, user, func(u *core.User) (bool, error) {
		key := core.MonthKey(year, month)
		for _, t := range u.RecurringExpenses {
			u.Expenses[key] = append(u.Expenses[key], &core.Expense{
				ID:          l.newID(),
				Amount:      t.Amount,
				Category:    t.Category,
				Date:        core.FirstOfMonth(year, month),
				Note:        t.Note + RecurringNoteSuffix,
				IsRecurring: true,
			})
		}
		applied = len(u.RecurringExpenses)
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	l.logger.InfoContext(ctx, "Recurring templates applied",
		"user", user, "year", year, "month", month, "count", applied)
	return applied, nil
}
