package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Default categories per user, in display order.
var defaultCategories = map[UserID][]string{
	UserTal: {
		"Fixed expenses",
		"Takeaway for two",
		"Takeaway for me",
		"Going out with friends",
		"Groceries on the way",
		"Eyebrows",
		"Grooming and clothing",
		"Fuel",
		"Weddings",
		"Other",
		"Studies",
		"Skin and hair treatments",
		"Nails",
		"Family gifts",
		"Getaways",
	},
	UserRon: {
		"Fixed expenses",
		"Car service and repairs",
		"Takeaway for two",
		"Takeaway for me",
		"Going out with friends",
		"Groceries on the way",
		"Books",
		"Cigarettes",
		"Parking apps and toll roads",
		"Parking lots",
		"Car cleaning",
		"Fuel",
		"Grooming and clothing",
		"Pharmacy",
		"Getaways",
		"Weddings",
		"Other",
	},
}

var defaultNames = map[UserID]string{
	UserTal: "Tal",
	UserRon: "Ron",
}

// DefaultCategories returns a fresh copy of the default category list.
func DefaultCategories(id UserID) []string {
	return append([]string(nil), defaultCategories[id]...)
}

// NewUser returns the default record for one of the fixed users.
func NewUser(id UserID) *User {
	return &User{
		Name:              defaultNames[id],
		Categories:        DefaultCategories(id),
		Forecasts:         map[string]map[string]*Forecast{},
		Expenses:          map[string][]*Expense{},
		Savings:           map[string]Savings{},
		RecurringExpenses: []*RecurringTemplate{},
		Wishlist:          []*WishlistGoal{},
	}
}

// DefaultDocument is the store content used on first run and after reset.
func DefaultDocument() *Document {
	doc := &Document{Users: make(map[UserID]*User, len(Users))}
	for _, id := range Users {
		doc.Users[id] = NewUser(id)
	}
	return doc
}

// Savings decoding accepts both the typed object and the legacy bare number.
// A legacy number n is read as Savings{Bank: n}. Encoding is always typed.
func (s *Savings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Savings{}
		return nil
	}
	if data[0] != '{' {
		var n Amount
		_ = n.UnmarshalJSON(data)
		*s = Savings{Bank: n.Float()}
		return nil
	}
	var typed struct {
		Bank    Amount `json:"bank"`
		Pension Amount `json:"pension"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		*s = Savings{}
		return nil
	}
	*s = Savings{Bank: typed.Bank.Float(), Pension: typed.Pension.Float()}
	return nil
}

// Forecast decoding is lenient like Amount: a non-numeric actualIncome
// reads as "not recorded".
func (f *Forecast) UnmarshalJSON(data []byte) error {
	var raw struct {
		Income         Amount            `json:"income"`
		ActualIncome   json.RawMessage   `json:"actualIncome"`
		PlannedSavings Amount            `json:"plannedSavings"`
		Budgets        map[string]Amount `json:"budgets"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = Forecast{
		Income:         raw.Income,
		ActualIncome:   DecodeOptionalAmount(raw.ActualIncome),
		PlannedSavings: raw.PlannedSavings,
		Budgets:        raw.Budgets,
	}
	if f.Budgets == nil {
		f.Budgets = map[string]Amount{}
	}
	return nil
}

// DecodeOptionalAmount reads a JSON value where "not set" matters: null,
// blank and non-numeric input all return nil.
func DecodeOptionalAmount(data json.RawMessage) *float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		return ParseOptionalAmount(s)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return &f
}

// DecodeDocument parses a persisted or imported blob and runs the
// load-time migration pass over it:
//
//   - a top-level "users" object is required (ErrMissingUsers)
//   - legacy bare-number savings become typed savings
//   - nil collections and missing forecast fields get their defaults
//   - fixed users absent from the blob are restored from defaults
//
// Unknown user keys are kept as-is.
func DecodeDocument(data []byte) (*Document, error) {
	var head struct {
		Users json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	trimmed := bytes.TrimSpace(head.Users)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMissingUsers
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Users == nil {
		return nil, ErrMissingUsers
	}
	Normalize(&doc)
	return &doc, nil
}

// Normalize fills defaults in place. It is idempotent.
func Normalize(doc *Document) {
	if doc.Users == nil {
		doc.Users = map[UserID]*User{}
	}
	for _, id := range Users {
		if doc.Users[id] == nil {
			doc.Users[id] = NewUser(id)
		}
	}
	for id, u := range doc.Users {
		if u == nil {
			delete(doc.Users, id)
			continue
		}
		normalizeUser(u)
	}
}

func normalizeUser(u *User) {
	if u.Categories == nil {
		u.Categories = []string{}
	}
	if u.Forecasts == nil {
		u.Forecasts = map[string]map[string]*Forecast{}
	}
	for year, months := range u.Forecasts {
		if months == nil {
			u.Forecasts[year] = map[string]*Forecast{}
			continue
		}
		for m, f := range months {
			if f == nil {
				months[m] = NewForecast()
				continue
			}
			if f.Budgets == nil {
				f.Budgets = map[string]Amount{}
			}
		}
	}
	if u.Expenses == nil {
		u.Expenses = map[string][]*Expense{}
	}
	for key, list := range u.Expenses {
		kept := list[:0]
		for _, e := range list {
			if e != nil {
				kept = append(kept, e)
			}
		}
		u.Expenses[key] = kept
	}
	if u.Savings == nil {
		u.Savings = map[string]Savings{}
	}
	if u.RecurringExpenses == nil {
		u.RecurringExpenses = []*RecurringTemplate{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []*WishlistGoal{}
	}
}
