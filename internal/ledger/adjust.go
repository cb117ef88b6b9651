package ledger

import "budgetbook/internal/core"

// IncomeReductionRatio is the share of forecast income that did not
// arrive. It is 0 when no actual income is recorded, the forecast income
// is 0, or actual income meets the forecast; otherwise it lies in (0, 1].
func (l *Ledger) IncomeReductionRatio(user core.UserID, year, month int) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return 0
	}
	return reductionRatio(peekForecast(u, year, month))
}

func reductionRatio(f *core.Forecast) float64 {
	income := f.Income.Float()
	if f.ActualIncome == nil || income == 0 || *f.ActualIncome >= income {
		return 0
	}
	return (income - *f.ActualIncome) / income
}

func adjust(original, ratio float64) float64 {
	if original == 0 {
		return 0
	}
	if ratio == 0 {
		return original
	}
	return max(0, original*(1-ratio))
}

// AdjustedBudget shrinks the category budget by the income reduction ratio.
func (l *Ledger) AdjustedBudget(user core.UserID, year, month int, category string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return 0
	}
	f := peekForecast(u, year, month)
	return adjust(f.Budget(category), reductionRatio(f))
}

// AdjustedBudgets covers every live category of the user.
func (l *Ledger) AdjustedBudgets(user core.UserID, year, month int) map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return map[string]float64{}
	}
	return adjustedBudgets(u, peekForecast(u, year, month))
}

func adjustedBudgets(u *core.User, f *core.Forecast) map[string]float64 {
	ratio := reductionRatio(f)
	out := make(map[string]float64, len(u.Categories))
	for _, c := range u.Categories {
		out[c] = adjust(f.Budget(c), ratio)
	}
	return out
}

func (l *Ledger) TotalAdjustedBudget(user core.UserID, year, month int) float64 {
	var total float64
	for _, v := range l.AdjustedBudgets(user, year, month) {
		total += v
	}
	return total
}

// TotalBudget sums the original budget map, orphaned categories included.
func (l *Ledger) TotalBudget(user core.UserID, year, month int) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return 0
	}
	return peekForecast(u, year, month).TotalBudget()
}

// PreviousMonthDeficit is the prior month's overspend against a positive
// original budget, 0 otherwise. It is informational and never reduces
// the current month's budgets.
func (l *Ledger) PreviousMonthDeficit(user core.UserID, year, month int) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return 0
	}
	return previousMonthDeficit(u, year, month)
}

func previousMonthDeficit(u *core.User, year, month int) float64 {
	py, pm := core.PrevMonth(year, month)
	budget := peekForecast(u, py, pm).TotalBudget()
	spent := totalSpent(u, py, pm)
	if spent > budget && budget > 0 {
		return spent - budget
	}
	return 0
}
