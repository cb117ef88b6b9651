package ledger

import (
	"context"
	"fmt"

	"budgetbook/internal/core"
)

// Forecast returns the forecast for the month, creating and attaching a
// default record when none exists. The created record is persisted with
// the next save. Repeated calls return the same content and never reset
// fields. An unknown user or month gets a detached default.
func (l *Ledger) Forecast(user core.UserID, year, month int) core.Forecast {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil || !core.ValidMonth(month) {
		return *core.NewForecast()
	}
	return cloneForecast(forecastFor(u, year, month))
}

// forecastFor materialises the record. Callers hold l.mu.
func forecastFor(u *core.User, year, month int) *core.Forecast {
	yk, mk := core.YearKey(year), core.MonthString(month)
	months := u.Forecasts[yk]
	if months == nil {
		months = map[string]*core.Forecast{}
		u.Forecasts[yk] = months
	}
	f := months[mk]
	if f == nil {
		f = core.NewForecast()
		months[mk] = f
	}
	if f.Budgets == nil {
		f.Budgets = map[string]core.Amount{}
	}
	return f
}

// peekForecast is forecastFor without attaching anything. Derived reads
// use it so that computing a view does not grow the document.
func peekForecast(u *core.User, year, month int) *core.Forecast {
	if f := u.Forecasts[core.YearKey(year)][core.MonthString(month)]; f != nil {
		return f
	}
	return core.NewForecast()
}

func checkMonth(month int) error {
	if !core.ValidMonth(month) {
		return fmt.Errorf("%w: %d", core.ErrInvalidMonth, month)
	}
	return nil
}

func (l *Ledger) SetIncome(ctx context.Context, user core.UserID, year, month int, amount float64) error {
	return l.setForecastField(ctx, user, year, month, func(f *core.Forecast) {
		f.Income = core.Amount(amount)
	})
}

// SetActualIncome records the income actually received. nil clears it so
// the forecast income applies again; 0 is a legitimate recorded value.
func (l *Ledger) SetActualIncome(ctx context.Context, user core.UserID, year, month int, amount *float64) error {
	return l.setForecastField(ctx, user, year, month, func(f *core.Forecast) {
		if amount == nil {
			f.ActualIncome = nil
			return
		}
		v := *amount
		f.ActualIncome = &v
	})
}

func (l *Ledger) SetPlannedSavings(ctx context.Context, user core.UserID, year, month int, amount float64) error {
	return l.setForecastField(ctx, user, year, month, func(f *core.Forecast) {
		f.PlannedSavings = core.Amount(amount)
	})
}

func (l *Ledger) SetBudget(ctx context.Context, user core.UserID, year, month int, category string, amount float64) error {
	if category == "" {
		return core.ErrEmptyCategory
	}
	return l.setForecastField(ctx, user, year, month, func(f *core.Forecast) {
		f.Budgets[category] = core.Amount(amount)
	})
}

func (l *Ledger) setForecastField(ctx context.Context, user core.UserID, year, month int, set func(*core.Forecast)) error {
	if err := checkMonth(month); err != nil {
		return err
	}
	_, err := l.mutate(ctx, user, func(u *core.User) (bool, error) {
		set(forecastFor(u, year, month))
		return true, nil
	})
	return err
}

// CopyBudgetToYear copies the budget map of sourceMonth into every other
// month of the year, replacing their budgets.
func (l *Ledger) CopyBudgetToYear(ctx context.Context, user core.UserID, year, sourceMonth int) error {
	if err := checkMonth(sourceMonth); err != nil {
		return err
	}
	_, err := l.mutate(ctx, user, func(u *core.User) (bool, error) {
		src := forecastFor(u, year, sourceMonth)
		for m := 1; m <= 12; m++ {
			if m == sourceMonth {
				continue
			}
			dst := forecastFor(u, year, m)
			dst.Budgets = make(map[string]core.Amount, len(src.Budgets))
			for k, v := range src.Budgets {
				dst.Budgets[k] = v
			}
		}
		return true, nil
	})
	return err
}

// CopyIncomeToYear copies income and planned savings of sourceMonth into
// all 12 months of the year.
func (l *Ledger) CopyIncomeToYear(ctx context.Context, user core.UserID, year, sourceMonth int) error {
	if err := checkMonth(sourceMonth); err != nil {
		return err
	}
	_, err := l.mutate(ctx, user, func(u *core.User) (bool, error) {
		src := forecastFor(u, year, sourceMonth)
		for m := 1; m <= 12; m++ {
			dst := forecastFor(u, year, m)
			dst.Income = src.Income
			dst.PlannedSavings = src.PlannedSavings
		}
		return true, nil
	})
	return err
}
