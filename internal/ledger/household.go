package ledger

import (
	"sort"

	"budgetbook/internal/core"
)

// Household combines both users for one month using forecast income and
// original budgets. Categories come from the sorted union of both users'
// lists; only categories with spending are included.
func (l *Ledger) Household(year, month int) (HouseholdView, error) {
	if err := checkMonth(month); err != nil {
		return HouseholdView{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	v := HouseholdView{
		Year:    year,
		Month:   month,
		SpentBy: make(map[core.UserID]float64, len(core.Users)),
	}
	union := map[string]bool{}
	byUser := make(map[core.UserID]map[string]float64, len(core.Users))
	for _, id := range core.Users {
		u := l.doc.Users[id]
		if u == nil {
			continue
		}
		f := peekForecast(u, year, month)
		v.Income += f.Income.Float()
		v.Budget += f.TotalBudget()
		spent := totalSpent(u, year, month)
		v.SpentBy[id] = spent
		v.Spent += spent
		byUser[id] = spentByCategory(u, year, month)
		for _, c := range u.Categories {
			union[c] = true
		}
	}
	v.Remaining = v.Budget - v.Spent

	names := make([]string, 0, len(union))
	for c := range union {
		names = append(names, c)
	}
	sort.Strings(names)
	for _, c := range names {
		row := CategoryComparison{Category: c, ByUser: map[core.UserID]float64{}}
		for _, id := range core.Users {
			amt := byUser[id][c]
			row.ByUser[id] = amt
			row.Total += amt
		}
		if row.Total == 0 && !anyNonZero(row.ByUser) {
			continue
		}
		v.Categories = append(v.Categories, row)
	}
	return v, nil
}

func anyNonZero(m map[core.UserID]float64) bool {
	for _, v := range m {
		if v != 0 {
			return true
		}
	}
	return false
}

// UserComparison returns the monthly spending of every user over a year.
func (l *Ledger) UserComparison(year int) UserComparison {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := UserComparison{
		Year:   year,
		Months: make(map[core.UserID][]float64, len(core.Users)),
		Totals: make(map[core.UserID]float64, len(core.Users)),
	}
	for _, id := range core.Users {
		u := l.doc.Users[id]
		months := make([]float64, 12)
		if u != nil {
			for m := 1; m <= 12; m++ {
				months[m-1] = totalSpent(u, year, m)
				c.Totals[id] += months[m-1]
			}
		}
		c.Months[id] = months
	}
	return c
}
