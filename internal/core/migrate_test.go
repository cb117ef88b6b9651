package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDecodeDocumentUpgradesLegacySavings(t *testing.T) {
	data := `{"users": {"tal": {"name": "Tal", "categories": ["Food"],
		"savings": {"2025-01": 500, "2025-02": {"bank": 300, "pension": 200}}}}}`
	doc, err := DecodeDocument([]byte(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tal := doc.Users[UserTal]
	if got := tal.Savings["2025-01"]; got != (Savings{Bank: 500}) {
		t.Fatalf("legacy savings: got %+v", got)
	}
	jan, feb := tal.Savings["2025-01"], tal.Savings["2025-02"]
	if jan.Total()+feb.Total() != 1000 {
		t.Fatalf("yearly total: got %v", jan.Total()+feb.Total())
	}

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"2025-01":{"bank":500,"pension":0}`) {
		t.Fatalf("savings must be written in typed form: %s", out)
	}
}

func TestDecodeDocumentRequiresUsers(t *testing.T) {
	for _, data := range []string{`{}`, `{"users": []}`, `{"users": null}`, `{"other": 1}`} {
		if _, err := DecodeDocument([]byte(data)); !errors.Is(err, ErrMissingUsers) {
			t.Fatalf("%s: expected ErrMissingUsers, got %v", data, err)
		}
	}
	if _, err := DecodeDocument([]byte(`not json`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDecodeDocumentFillsDefaults(t *testing.T) {
	data := `{"users": {"ron": {"name": "Ron", "categories": ["Fuel"],
		"forecasts": {"2025": {"03": {"income": "9000"}}}}}}`
	doc, err := DecodeDocument([]byte(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Users[UserTal] == nil || len(doc.Users[UserTal].Categories) == 0 {
		t.Fatalf("missing fixed user should be restored from defaults")
	}
	ron := doc.Users[UserRon]
	if ron.Expenses == nil || ron.Savings == nil || ron.RecurringExpenses == nil || ron.Wishlist == nil {
		t.Fatalf("collections should be defaulted: %+v", ron)
	}
	f := ron.Forecasts["2025"]["03"]
	if f.Income != 9000 || f.ActualIncome != nil || f.PlannedSavings != 0 || f.Budgets == nil {
		t.Fatalf("forecast defaults: %+v", f)
	}
}

func TestForecastActualIncomeLenient(t *testing.T) {
	cases := []struct {
		raw  string
		want *float64
	}{
		{`{"actualIncome": null}`, nil},
		{`{}`, nil},
		{`{"actualIncome": ""}`, nil},
		{`{"actualIncome": "abc"}`, nil},
		{`{"actualIncome": 0}`, ptr(0)},
		{`{"actualIncome": "8000"}`, ptr(8000)},
	}
	for i, tc := range cases {
		var f Forecast
		if err := json.Unmarshal([]byte(tc.raw), &f); err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		switch {
		case tc.want == nil && f.ActualIncome != nil:
			t.Fatalf("case %d: expected nil, got %v", i, *f.ActualIncome)
		case tc.want != nil && (f.ActualIncome == nil || *f.ActualIncome != *tc.want):
			t.Fatalf("case %d: expected %v, got %v", i, *tc.want, f.ActualIncome)
		}
	}
}

func TestEffectiveIncomeDistinguishesZero(t *testing.T) {
	f := NewForecast()
	f.Income = 10000
	if f.EffectiveIncome() != 10000 {
		t.Fatalf("nil actual income should fall back to income")
	}
	zero := 0.0
	f.ActualIncome = &zero
	if f.EffectiveIncome() != 0 {
		t.Fatalf("recorded zero must be honoured")
	}
}

func TestDefaultDocument(t *testing.T) {
	doc := DefaultDocument()
	for _, id := range Users {
		u := doc.Users[id]
		if u == nil || u.Name == "" || len(u.Categories) == 0 {
			t.Fatalf("default user %s incomplete", id)
		}
		seen := map[string]bool{}
		for _, c := range u.Categories {
			if seen[c] {
				t.Fatalf("duplicate default category %q for %s", c, id)
			}
			seen[c] = true
		}
	}
	doc.Users[UserTal].Categories[0] = "changed"
	if DefaultDocument().Users[UserTal].Categories[0] == "changed" {
		t.Fatalf("default categories must not be shared")
	}
}

func ptr(f float64) *float64 { return &f }
