package ledger

import "budgetbook/internal/core"

func cloneDocument(doc *core.Document) *core.Document {
	out := &core.Document{Users: make(map[core.UserID]*core.User, len(doc.Users))}
	for id, u := range doc.Users {
		out.Users[id] = cloneUser(u)
	}
	return out
}

func cloneUser(u *core.User) *core.User {
	out := &core.User{
		Name:              u.Name,
		Categories:        append([]string{}, u.Categories...),
		Forecasts:         make(map[string]map[string]*core.Forecast, len(u.Forecasts)),
		Expenses:          make(map[string][]*core.Expense, len(u.Expenses)),
		Savings:           make(map[string]core.Savings, len(u.Savings)),
		RecurringExpenses: make([]*core.RecurringTemplate, 0, len(u.RecurringExpenses)),
		Wishlist:          make([]*core.WishlistGoal, 0, len(u.Wishlist)),
	}
	for year, months := range u.Forecasts {
		m := make(map[string]*core.Forecast, len(months))
		for month, f := range months {
			fc := cloneForecast(f)
			m[month] = &fc
		}
		out.Forecasts[year] = m
	}
	for key, list := range u.Expenses {
		out.Expenses[key] = cloneExpenses(list)
	}
	for key, s := range u.Savings {
		out.Savings[key] = s
	}
	for _, t := range u.RecurringExpenses {
		tc := *t
		out.RecurringExpenses = append(out.RecurringExpenses, &tc)
	}
	for _, g := range u.Wishlist {
		gc := *g
		out.Wishlist = append(out.Wishlist, &gc)
	}
	return out
}

func cloneForecast(f *core.Forecast) core.Forecast {
	out := core.Forecast{
		Income:         f.Income,
		PlannedSavings: f.PlannedSavings,
		Budgets:        make(map[string]core.Amount, len(f.Budgets)),
	}
	if f.ActualIncome != nil {
		v := *f.ActualIncome
		out.ActualIncome = &v
	}
	for k, v := range f.Budgets {
		out.Budgets[k] = v
	}
	return out
}

func cloneExpenses(list []*core.Expense) []*core.Expense {
	out := make([]*core.Expense, 0, len(list))
	for _, e := range list {
		ec := *e
		out = append(out, &ec)
	}
	return out
}
