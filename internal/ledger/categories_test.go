package ledger

import (
	"context"
	"testing"

	"budgetbook/internal/core"
)

func TestRenameCategoryCascades(t *testing.T) {
	ctx := context.Background()
	l, _ := openWith(t, `{"users": {"tal": {"name": "Tal", "categories": ["A", "C"],
		"forecasts": {"2025": {"11": {"income": 1, "budgets": {"A": 400, "C": 10}}},
		              "2026": {"02": {"income": 1, "budgets": {"A": 250}}}},
		"expenses": {"2025-11": [{"id": "e1", "amount": 30, "category": "A", "date": "2025-11-02", "note": ""}],
		             "2026-02": [{"id": "e2", "amount": 10, "category": "C", "date": "2026-02-02", "note": ""}]}}}}`)
	u := core.UserTal

	ok, err := l.RenameCategory(ctx, u, "A", "B")
	if err != nil || !ok {
		t.Fatalf("rename: %v %v", ok, err)
	}
	if cats := l.Categories(u); cats[0] != "B" || cats[1] != "C" {
		t.Fatalf("rename must keep display position: %v", cats)
	}
	if e := l.Expenses(u, 2025, 11)[0]; e.Category != "B" {
		t.Fatalf("expense not renamed: %+v", e)
	}
	if e := l.Expenses(u, 2026, 2)[0]; e.Category != "C" {
		t.Fatalf("unrelated expense touched: %+v", e)
	}
	for _, ym := range [][2]int{{2025, 11}, {2026, 2}} {
		b := l.Forecast(u, ym[0], ym[1]).Budgets
		if _, ok := b["A"]; ok {
			t.Fatalf("%v: old budget key left behind: %v", ym, b)
		}
	}
	if b := l.Forecast(u, 2025, 11).Budgets; b["B"] != 400 || b["C"] != 10 {
		t.Fatalf("budget value must move key: %v", b)
	}
	if b := l.Forecast(u, 2026, 2).Budgets; b["B"] != 250 {
		t.Fatalf("budget value must move key: %v", b)
	}
}

func TestRenameCategoryRejects(t *testing.T) {
	ctx := context.Background()
	l, store := openWith(t, `{"users": {"ron": {"name": "Ron", "categories": ["A", "B"]}}}`)
	u := core.UserRon
	cases := [][2]string{
		{"missing", "X"},
		{"A", ""},
		{"A", "B"},
	}
	for _, c := range cases {
		ok, err := l.RenameCategory(ctx, u, c[0], c[1])
		if err != nil || ok {
			t.Fatalf("rename %q->%q should be rejected, got %v %v", c[0], c[1], ok, err)
		}
	}
	if store.Saves() != 0 {
		t.Fatalf("rejected renames must not persist")
	}
}

func TestDeleteCategoryDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	u := core.UserTal
	_ = l.SetBudget(ctx, u, 2026, 1, "Fuel", 300)
	_, _ = l.AddExpense(ctx, u, ExpenseInput{Amount: 80, Category: "Fuel", Date: "2026-01-10"})

	ok, err := l.DeleteCategory(ctx, u, "Fuel")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	for _, c := range l.Categories(u) {
		if c == "Fuel" {
			t.Fatalf("category still listed")
		}
	}
	if e := l.Expenses(u, 2026, 1)[0]; e.Category != "Fuel" {
		t.Fatalf("expense must keep stale category: %+v", e)
	}
	if b := l.Forecast(u, 2026, 1).Budgets; b["Fuel"] != 300 {
		t.Fatalf("budget must keep stale key: %v", b)
	}
	if ok, _ := l.DeleteCategory(ctx, u, "Fuel"); ok {
		t.Fatalf("second delete should report false")
	}
}

func TestAddCategory(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	u := core.UserRon
	if ok, _ := l.AddCategory(ctx, u, "Boat"); !ok {
		t.Fatalf("add new category failed")
	}
	if ok, _ := l.AddCategory(ctx, u, "Boat"); ok {
		t.Fatalf("duplicate must be rejected")
	}
	if ok, _ := l.AddCategory(ctx, u, "   "); ok {
		t.Fatalf("empty name must be rejected")
	}
	cats := l.Categories(u)
	if cats[len(cats)-1] != "Boat" {
		t.Fatalf("new category appended last: %v", cats)
	}
}
