package ledger

import (
	"context"
	"testing"

	"budgetbook/internal/core"
)

func TestSpentCoercesNonNumericAmounts(t *testing.T) {
	l, _ := openWith(t, `{"users": {"tal": {"name": "Tal", "categories": ["Fuel", "Food"],
		"expenses": {"2026-01": [
			{"id": "a", "amount": 100, "category": "Fuel", "date": "2026-01-02", "note": ""},
			{"id": "b", "amount": "50", "category": "Fuel", "date": "2026-01-03", "note": ""},
			{"id": "c", "amount": "oops", "category": "Food", "date": "2026-01-04", "note": ""},
			{"id": "d", "amount": null, "category": "Food", "date": "2026-01-05", "note": ""}
		]}}}}`)

	spent := l.SpentByCategory(core.UserTal, 2026, 1)
	if spent["Fuel"] != 150 || spent["Food"] != 0 {
		t.Fatalf("unexpected spend: %v", spent)
	}
	if got := l.TotalSpent(core.UserTal, 2026, 1); got != 150 {
		t.Fatalf("total: got %v", got)
	}
}

func TestCategoryStats(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	u := core.UserTal
	add := func(amount float64, cat, date string) {
		t.Helper()
		if _, err := l.AddExpense(ctx, u, ExpenseInput{Amount: amount, Category: cat, Date: date}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	add(100, "Fuel", "2026-01-05")
	add(120, "Fuel", "2026-02-05")
	add(180, "Fuel", "2026-02-20")
	add(200, "Fuel", "2026-03-05")
	// A month with spending in other categories only must be ignored.
	add(75, "Other", "2026-04-01")

	s := l.CategoryStats(u, "Fuel")
	if s.Average != 200 || s.Median != 200 || s.Total != 600 || s.Months != 3 {
		t.Fatalf("unexpected stats: %+v", s)
	}

	add(1000, "Fuel", "2026-05-01")
	s = l.CategoryStats(u, "Fuel")
	if s.Median != 250 {
		t.Fatalf("even count median: got %v want 250", s.Median)
	}

	empty := l.CategoryStats(u, "Weddings")
	if empty.Average != 0 || empty.Median != 0 || empty.Total != 0 {
		t.Fatalf("empty stats: %+v", empty)
	}
	if all := l.CategoryStatsAll(u); len(all) != len(l.Categories(u)) {
		t.Fatalf("expected stats per category, got %d", len(all))
	}
}

func TestLegacySavingsUpgrade(t *testing.T) {
	ctx := context.Background()
	l, _ := openWith(t, `{"users": {"tal": {"name": "Tal", "categories": [],
		"savings": {"2025-03": 500}}}}`)
	u := core.UserTal

	s := l.ActualSavings(u, 2025, 3)
	if s.Bank != 500 || s.Pension != 0 || s.Total() != 500 {
		t.Fatalf("legacy read: %+v", s)
	}
	if err := l.SetActualSavings(ctx, u, 2025, 3, core.SavingsPension, 200); err != nil {
		t.Fatalf("set pension: %v", err)
	}
	s = l.ActualSavings(u, 2025, 3)
	if s != (core.Savings{Bank: 500, Pension: 200}) {
		t.Fatalf("upgraded savings: %+v", s)
	}
	if err := l.SetActualSavings(ctx, u, 2025, 3, "crypto", 1); err != core.ErrUnknownSavingsKind {
		t.Fatalf("expected ErrUnknownSavingsKind, got %v", err)
	}
}

func TestYearlySavingsTotals(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	u := core.UserRon
	_ = l.SetActualSavings(ctx, u, 2026, 1, core.SavingsBank, 1000)
	_ = l.SetActualSavings(ctx, u, 2026, 1, core.SavingsPension, 300)
	_ = l.SetActualSavings(ctx, u, 2026, 11, core.SavingsBank, 500)
	_ = l.SetActualSavings(ctx, u, 2025, 11, core.SavingsBank, 9999)

	got := l.YearlySavingsTotals(u, 2026)
	if got != (SavingsTotals{Bank: 1500, Pension: 300, Total: 1800}) {
		t.Fatalf("yearly totals: %+v", got)
	}
}

func TestSavingsSummary(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	u := core.UserTal
	_ = l.SetIncome(ctx, u, 2026, 2, 10000)
	_ = l.SetBudget(ctx, u, 2026, 2, "Fuel", 7000)
	_, _ = l.AddExpense(ctx, u, ExpenseInput{Amount: 6000, Category: "Fuel", Date: "2026-02-01"})
	_ = l.SetActualSavings(ctx, u, 2026, 2, core.SavingsBank, 2500)

	s := l.SavingsSummary(u, 2026, 2)
	if s.Planned != 3000 || s.Potential != 4000 || s.PlanVsActual != -500 || s.LostMoney != 1500 {
		t.Fatalf("unexpected summary: %+v", s)
	}

	_ = l.SetBudget(ctx, u, 2026, 2, "Fuel", 12000)
	if s := l.SavingsSummary(u, 2026, 2); s.Planned != 0 {
		t.Fatalf("planned savings floor at 0, got %v", s.Planned)
	}
}

func TestMonthDashboardAlerts(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	u := core.UserRon
	_ = l.SetIncome(ctx, u, 2026, 3, 10000)
	_ = l.SetBudget(ctx, u, 2026, 3, "Fuel", 100)
	_ = l.SetBudget(ctx, u, 2026, 3, "Books", 100)
	_ = l.SetBudget(ctx, u, 2026, 3, "Pharmacy", 100)
	_, _ = l.AddExpense(ctx, u, ExpenseInput{Amount: 150, Category: "Fuel", Date: "2026-03-03"})
	_, _ = l.AddExpense(ctx, u, ExpenseInput{Amount: 85, Category: "Books", Date: "2026-03-04"})
	_, _ = l.AddExpense(ctx, u, ExpenseInput{Amount: 10, Category: "Pharmacy", Date: "2026-03-05"})

	d, err := l.MonthDashboard(u, 2026, 3)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	lines := map[string]CategoryLine{}
	for _, c := range d.Categories {
		lines[c.Category] = c
	}
	if c := lines["Fuel"]; c.Alert != AlertOver || c.Percent != 100 || !c.OverBudget || c.Remaining != -50 {
		t.Fatalf("fuel line: %+v", c)
	}
	if c := lines["Books"]; c.Alert != AlertWarning {
		t.Fatalf("books line: %+v", c)
	}
	if c := lines["Pharmacy"]; c.Alert != AlertNone {
		t.Fatalf("pharmacy line: %+v", c)
	}
	if c := lines["Cigarettes"]; c.Alert != AlertNone || c.Percent != 0 {
		t.Fatalf("unbudgeted line: %+v", c)
	}
	if d.TotalSpent != 245 || d.TotalAdjustedBudget != 300 || d.Remaining != 55 {
		t.Fatalf("totals: %+v", d)
	}
	if d.Deficit != nil {
		t.Fatalf("no previous month data, no deficit: %+v", d.Deficit)
	}
}

func TestOverviewAndMonths(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	u := core.UserTal
	_ = l.SetIncome(ctx, u, 2025, 12, 5000)
	_ = l.SetIncome(ctx, u, 2026, 1, 6000)
	_, _ = l.AddExpense(ctx, u, ExpenseInput{Amount: 700, Category: "Fuel", Date: "2026-01-09"})
	_, _ = l.AddExpense(ctx, u, ExpenseInput{Amount: 300, Category: "Fuel", Date: "2026-02-09"})

	o, err := l.Overview(u)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if o.TotalIncome != 11000 || o.TotalExpenses != 1000 || o.Balance != 10000 || o.MonthsWithExpenses != 2 {
		t.Fatalf("overview: %+v", o)
	}

	months := l.MonthsWithData(u)
	want := []string{"2026-02", "2026-01", "2025-12"}
	if len(months) != len(want) {
		t.Fatalf("months: %v", months)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Fatalf("months: got %v want %v", months, want)
		}
	}
}
