package core

import (
	"errors"
	"strings"
)

const (
	UserTal UserID = "tal"
	UserRon UserID = "ron"
)

const (
	SavingsBank    SavingsKind = "bank"
	SavingsPension SavingsKind = "pension"
)

// Users lists the household members in display order.
var Users = []UserID{UserTal, UserRon}

type (
	UserID string

	SavingsKind string

	// Document is the whole persisted store.
	Document struct {
		Users map[UserID]*User `json:"users"`
	}

	User struct {
		Name       string   `json:"name"`
		Categories []string `json:"categories"`
		// Forecasts are keyed by "YYYY" then "MM".
		Forecasts map[string]map[string]*Forecast `json:"forecasts"`
		// Expenses are keyed by "YYYY-MM".
		Expenses map[string][]*Expense `json:"expenses"`
		// Savings are keyed by "YYYY-MM".
		Savings           map[string]Savings   `json:"savings"`
		RecurringExpenses []*RecurringTemplate `json:"recurringExpenses"`
		Wishlist          []*WishlistGoal      `json:"wishlist"`
	}

	Forecast struct {
		Income Amount `json:"income"`
		// ActualIncome is nil until recorded; nil means "use Income".
		ActualIncome   *float64          `json:"actualIncome"`
		PlannedSavings Amount            `json:"plannedSavings"`
		Budgets        map[string]Amount `json:"budgets"`
	}

	Expense struct {
		ID          string `json:"id"`
		Amount      Amount `json:"amount"`
		Category    string `json:"category"`
		Date        string `json:"date"`
		Note        string `json:"note"`
		IsRecurring bool   `json:"isRecurring,omitempty"`
	}

	Savings struct {
		Bank    float64 `json:"bank"`
		Pension float64 `json:"pension"`
	}

	RecurringTemplate struct {
		ID       string `json:"id"`
		Category string `json:"category"`
		Amount   Amount `json:"amount"`
		Note     string `json:"note"`
	}

	WishlistGoal struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		TargetAmount Amount `json:"targetAmount"`
		SavedAmount  Amount `json:"savedAmount"`
		Note         string `json:"note"`
	}
)

var (
	ErrUnknownUser        = errors.New("unknown user")
	ErrEmptyCategory      = errors.New("empty category name")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrUnknownSavingsKind = errors.New("unknown savings kind")
	ErrMissingUsers       = errors.New("document has no users collection")
)

// Valid reports whether id names one of the fixed household users.
func (id UserID) Valid() bool {
	for _, u := range Users {
		if u == id {
			return true
		}
	}
	return false
}

func (id UserID) String() string {
	return string(id)
}

// ParseUserID normalises s and checks it against the fixed users.
func ParseUserID(s string) (UserID, error) {
	id := UserID(strings.ToLower(strings.TrimSpace(s)))
	if !id.Valid() {
		return "", ErrUnknownUser
	}
	return id, nil
}

// Valid reports whether k is a known savings bucket.
func (k SavingsKind) Valid() bool {
	return k == SavingsBank || k == SavingsPension
}

// Total is derived and never stored.
func (s Savings) Total() float64 {
	return s.Bank + s.Pension
}

// With returns a copy of s with the given bucket set.
func (s Savings) With(kind SavingsKind, amount float64) Savings {
	switch kind {
	case SavingsBank:
		s.Bank = amount
	case SavingsPension:
		s.Pension = amount
	}
	return s
}

// NewForecast returns a forecast with every field at its default.
func NewForecast() *Forecast {
	return &Forecast{Budgets: map[string]Amount{}}
}

// Budget returns the original budget for category, 0 when absent.
func (f *Forecast) Budget(category string) float64 {
	return f.Budgets[category].Float()
}

// TotalBudget sums every entry of the budget map, orphaned names included.
func (f *Forecast) TotalBudget() float64 {
	var total float64
	for _, v := range f.Budgets {
		total += v.Float()
	}
	return total
}

// EffectiveIncome is ActualIncome when recorded, otherwise Income.
func (f *Forecast) EffectiveIncome() float64 {
	if f.ActualIncome != nil {
		return *f.ActualIncome
	}
	return f.Income.Float()
}

// HasCategory reports whether name is a live category of u.
func (u *User) HasCategory(name string) bool {
	return u.CategoryIndex(name) >= 0
}

// CategoryIndex returns the display position of name, or -1.
func (u *User) CategoryIndex(name string) int {
	for i, c := range u.Categories {
		if c == name {
			return i
		}
	}
	return -1
}

// FindExpense returns the expense with id in the month bucket key.
func (u *User) FindExpense(key, id string) (*Expense, int) {
	for i, e := range u.Expenses[key] {
		if e.ID == id {
			return e, i
		}
	}
	return nil, -1
}
