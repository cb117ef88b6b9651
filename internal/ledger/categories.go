package ledger

import (
	"context"
	"strings"

	"budgetbook/internal/core"
)

// Categories returns the user's live categories in display order.
func (l *Ledger) Categories(user core.UserID) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return nil
	}
	return append([]string{}, u.Categories...)
}

// AddCategory appends name. It reports false for an empty or existing name.
func (l *Ledger) AddCategory(ctx context.Context, user core.UserID, name string) (bool, error) {
	name = strings.TrimSpace(name)
	return l.mutate(ctx, user, func(u *core.User) (bool, error) {
		if name == "" || u.HasCategory(name) {
			return false, nil
		}
		u.Categories = append(u.Categories, name)
		return true, nil
	})
}

// RenameCategory renames oldName in place and moves every expense and
// every forecast budget entry of the user to newName in the same step.
// It reports false when oldName is missing or newName is empty or taken.
func (l *Ledger) RenameCategory(ctx context.Context, user core.UserID, oldName, newName string) (bool, error) {
	newName = strings.TrimSpace(newName)
	return l.mutate(ctx, user, func(u *core.User) (bool, error) {
		i := u.CategoryIndex(oldName)
		if i < 0 || newName == "" {
			return false, nil
		}
		if newName == oldName {
			return true, nil
		}
		if u.HasCategory(newName) {
			return false, nil
		}
		u.Categories[i] = newName
		for _, list := range u.Expenses {
			for _, e := range list {
				if e.Category == oldName {
					e.Category = newName
				}
			}
		}
		for _, months := range u.Forecasts {
			for _, f := range months {
				if v, ok := f.Budgets[oldName]; ok {
					f.Budgets[newName] = v
					delete(f.Budgets, oldName)
				}
			}
		}
		for _, t := range u.RecurringExpenses {
			if t.Category == oldName {
				t.Category = newName
			}
		}
		return true, nil
	})
}

// DeleteCategory removes name from the category list only. Expenses and
// budgets that reference it keep the stale name.
func (l *Ledger) DeleteCategory(ctx context.Context, user core.UserID, name string) (bool, error) {
	return l.mutate(ctx, user, func(u *core.User) (bool, error) {
		i := u.CategoryIndex(name)
		if i < 0 {
			return false, nil
		}
		u.Categories = append(u.Categories[:i], u.Categories[i+1:]...)
		return true, nil
	})
}
