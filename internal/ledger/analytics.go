package ledger

import (
	"sort"

	"budgetbook/internal/core"
)

// YearlyAnalytics walks the 12 months of year using forecast income
// (not actual income) and original budgets.
//
// Per month: overrun = spent - total budget, potential savings =
// income - spent, lost money = potential - recorded savings total.
// The year summary tracks the worst overrun (positive total budget only),
// the best savings efficiency (positive income and savings only), the
// worst lost money (positive income only), the number of months meeting
// a positive savings target, and the category with the largest summed
// overspend against positive budgets.
func (l *Ledger) YearlyAnalytics(user core.UserID, year int) (YearlyAnalytics, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return YearlyAnalytics{}, err
	}

	a := YearlyAnalytics{Year: year, Months: make([]MonthAnalytics, 0, 12)}
	overruns := map[string]float64{}

	for m := 1; m <= 12; m++ {
		f := peekForecast(u, year, m)
		spent := totalSpent(u, year, m)
		byCat := spentByCategory(u, year, m)
		savings := u.Savings[core.MonthKey(year, m)]

		income := f.Income.Float()
		planned := f.PlannedSavings.Float()
		budget := f.TotalBudget()
		overrun := spent - budget
		lost := (income - spent) - savings.Total()

		if savings.Total() >= planned && planned > 0 {
			a.GoalsMet++
		}
		a.Months = append(a.Months, MonthAnalytics{
			Month:          m,
			Income:         income,
			Spent:          spent,
			Budget:         budget,
			Overrun:        overrun,
			Savings:        savings.Total(),
			PlannedSavings: planned,
			Bank:           savings.Bank,
			Pension:        savings.Pension,
			LostMoney:      lost,
		})

		if overrun > a.WorstOverrun.Amount && budget > 0 {
			a.WorstOverrun = MonthAmount{Month: m, Amount: overrun}
		}
		if income > 0 && savings.Total() > 0 {
			if eff := savings.Total() / income * 100; eff > a.BestSavings.Efficiency {
				a.BestSavings = SavingsEfficiency{Month: m, Savings: savings.Total(), Efficiency: eff}
			}
		}
		if lost > a.WorstLost.Amount && income > 0 {
			a.WorstLost = MonthAmount{Month: m, Amount: lost}
		}
		for _, c := range u.Categories {
			b, s := f.Budget(c), byCat[c]
			if s > b && b > 0 {
				overruns[c] += s - b
			}
		}

		a.YearlyIncome += income
		a.YearlySpent += spent
		a.YearlySavings += savings.Total()
		a.YearlyLost += max(0, lost)
	}

	// Iterate in a stable order so ties resolve to the same category.
	names := make([]string, 0, len(overruns))
	for c := range overruns {
		names = append(names, c)
	}
	sort.Strings(names)
	for _, c := range names {
		if overruns[c] > a.WorstCategory.Amount {
			a.WorstCategory = CategoryOverrun{Category: c, Amount: overruns[c]}
		}
	}
	return a, nil
}
