package ledger

import (
	"context"
	"math"
	"sort"

	"budgetbook/internal/core"
)

func monthExpenses(u *core.User, year, month int) []*core.Expense {
	return u.Expenses[core.MonthKey(year, month)]
}

func spentByCategory(u *core.User, year, month int) map[string]float64 {
	spent := map[string]float64{}
	for _, e := range monthExpenses(u, year, month) {
		spent[e.Category] += e.Amount.Float()
	}
	return spent
}

func totalSpent(u *core.User, year, month int) float64 {
	var total float64
	for _, e := range monthExpenses(u, year, month) {
		total += e.Amount.Float()
	}
	return total
}

// SpentByCategory groups the month's expenses by category, stale
// category names included.
func (l *Ledger) SpentByCategory(user core.UserID, year, month int) map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return map[string]float64{}
	}
	return spentByCategory(u, year, month)
}

func (l *Ledger) TotalSpent(user core.UserID, year, month int) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return 0
	}
	return totalSpent(u, year, month)
}

// EffectiveIncome is the recorded actual income, or the forecast income
// when none is recorded.
func (l *Ledger) EffectiveIncome(user core.UserID, year, month int) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return 0
	}
	return peekForecast(u, year, month).EffectiveIncome()
}

func (l *Ledger) ActualSavings(user core.UserID, year, month int) core.Savings {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return core.Savings{}
	}
	return u.Savings[core.MonthKey(year, month)]
}

// SetActualSavings sets one bucket of the month's savings and keeps the
// other.
func (l *Ledger) SetActualSavings(ctx context.Context, user core.UserID, year, month int, kind core.SavingsKind, amount float64) error {
	if !kind.Valid() {
		return core.ErrUnknownSavingsKind
	}
	if err := checkMonth(month); err != nil {
		return err
	}
	_, err := l.mutate(ctx, user, func(u *core.User) (bool, error) {
		key := core.MonthKey(year, month)
		u.Savings[key] = u.Savings[key].With(kind, amount)
		return true, nil
	})
	return err
}

func yearlySavings(u *core.User, year int) SavingsTotals {
	var out SavingsTotals
	for m := 1; m <= 12; m++ {
		s := u.Savings[core.MonthKey(year, m)]
		out.Bank += s.Bank
		out.Pension += s.Pension
	}
	out.Total = out.Bank + out.Pension
	return out
}

func (l *Ledger) YearlySavingsTotals(user core.UserID, year int) SavingsTotals {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return SavingsTotals{}
	}
	return yearlySavings(u, year)
}

func (l *Ledger) SavingsSummary(user core.UserID, year, month int) SavingsSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return SavingsSummary{}
	}
	return savingsSummary(u, year, month)
}

func savingsSummary(u *core.User, year, month int) SavingsSummary {
	f := peekForecast(u, year, month)
	income := f.EffectiveIncome()
	budget := f.TotalBudget()
	spent := totalSpent(u, year, month)
	actual := totalsOf(u.Savings[core.MonthKey(year, month)])
	planned := max(0, income-budget)
	potential := income - spent
	return SavingsSummary{
		EffectiveIncome: income,
		TotalBudget:     budget,
		Spent:           spent,
		Planned:         planned,
		Target:          f.PlannedSavings.Float(),
		Actual:          actual,
		Potential:       potential,
		PlanVsActual:    actual.Total - planned,
		LostMoney:       potential - actual.Total,
		Yearly:          yearlySavings(u, year),
	}
}

// MonthDashboard assembles the per-month view: totals against the
// adjusted budget, per-category progress and the previous month alert.
func (l *Ledger) MonthDashboard(user core.UserID, year, month int) (Dashboard, error) {
	if err := checkMonth(month); err != nil {
		return Dashboard{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return Dashboard{}, err
	}

	f := peekForecast(u, year, month)
	spent := spentByCategory(u, year, month)
	adjusted := adjustedBudgets(u, f)
	total := totalSpent(u, year, month)
	totalBudget := f.TotalBudget()

	d := Dashboard{
		User:            user,
		Year:            year,
		Month:           month,
		Income:          f.Income.Float(),
		EffectiveIncome: f.EffectiveIncome(),
		ReductionRatio:  reductionRatio(f),
		TotalBudget:     totalBudget,
		TotalSpent:      total,
		Categories:      make([]CategoryLine, 0, len(u.Categories)),
		Savings:         savingsSummary(u, year, month),
	}
	if f.ActualIncome != nil {
		v := *f.ActualIncome
		d.ActualIncome = &v
	}
	for _, c := range u.Categories {
		d.TotalAdjustedBudget += adjusted[c]
		d.Categories = append(d.Categories, categoryLine(c, f.Budget(c), adjusted[c], spent[c]))
	}
	d.Remaining = d.TotalAdjustedBudget - total

	if deficit := previousMonthDeficit(u, year, month); deficit > 0 {
		py, pm := core.PrevMonth(year, month)
		alert := &DeficitAlert{Year: py, Month: pm, Amount: deficit}
		if totalBudget > 0 {
			alert.ReductionPercent = int(math.Round(deficit / totalBudget * 100))
		}
		d.Deficit = alert
	}
	return d, nil
}

func categoryLine(category string, budget, adjusted, spent float64) CategoryLine {
	line := CategoryLine{
		Category:       category,
		Budget:         budget,
		AdjustedBudget: adjusted,
		Spent:          spent,
		Remaining:      adjusted - spent,
		Alert:          AlertNone,
	}
	if adjusted > 0 {
		p := spent / adjusted * 100
		line.Percent = min(p, 100)
		line.OverBudget = spent > adjusted
		switch {
		case p >= 100:
			line.Alert = AlertOver
		case p >= 80:
			line.Alert = AlertWarning
		}
	}
	return line
}

// Overview sums forecast income and expenses over the user's lifetime.
func (l *Ledger) Overview(user core.UserID) (Overview, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return Overview{}, err
	}
	var o Overview
	for _, months := range u.Forecasts {
		for _, f := range months {
			o.TotalIncome += f.Income.Float()
		}
	}
	for _, list := range u.Expenses {
		for _, e := range list {
			o.TotalExpenses += e.Amount.Float()
		}
	}
	o.Balance = o.TotalIncome - o.TotalExpenses
	o.MonthsWithExpenses = len(u.Expenses)
	return o, nil
}

// MonthsWithData lists "YYYY-MM" keys that hold a forecast or an expense
// bucket, newest first.
func (l *Ledger) MonthsWithData(user core.UserID) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	for year, months := range u.Forecasts {
		for month := range months {
			seen[year+"-"+month] = true
		}
	}
	for key := range u.Expenses {
		seen[key] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// CategoryStats summarises monthly totals of a category over every month
// where the category total is positive. Other months are left out rather
// than counted as zero.
func (l *Ledger) CategoryStats(user core.UserID, category string) CategoryStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return CategoryStats{Category: category}
	}
	return categoryStats(u, category)
}

// CategoryStatsAll returns stats for every live category in display order.
func (l *Ledger) CategoryStatsAll(user core.UserID) []CategoryStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return nil
	}
	out := make([]CategoryStats, 0, len(u.Categories))
	for _, c := range u.Categories {
		out = append(out, categoryStats(u, c))
	}
	return out
}

func categoryStats(u *core.User, category string) CategoryStats {
	var totals []float64
	for _, list := range u.Expenses {
		var total float64
		for _, e := range list {
			if e.Category == category {
				total += e.Amount.Float()
			}
		}
		if total > 0 {
			totals = append(totals, total)
		}
	}
	stats := CategoryStats{Category: category, Months: len(totals)}
	if len(totals) == 0 {
		return stats
	}
	for _, t := range totals {
		stats.Total += t
	}
	stats.Average = stats.Total / float64(len(totals))
	stats.Median = median(totals)
	return stats
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
