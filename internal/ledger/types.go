package ledger

import "budgetbook/internal/core"

// AlertLevel grades category spending against the adjusted budget.
type AlertLevel string

const (
	AlertNone    AlertLevel = "none"
	AlertWarning AlertLevel = "warning" // at least 80%
	AlertOver    AlertLevel = "over"    // at least 100%
)

type (
	SavingsTotals struct {
		Bank    float64 `json:"bank"`
		Pension float64 `json:"pension"`
		Total   float64 `json:"total"`
	}

	CategoryStats struct {
		Category string  `json:"category"`
		Average  float64 `json:"average"`
		Median   float64 `json:"median"`
		Total    float64 `json:"total"`
		Months   int     `json:"months"`
	}

	// SavingsSummary compares what could have been saved in a month with
	// what was recorded.
	SavingsSummary struct {
		EffectiveIncome float64 `json:"effectiveIncome"`
		TotalBudget     float64 `json:"totalBudget"`
		Spent           float64 `json:"spent"`
		// Planned is derived as max(0, effective income - total budget).
		Planned float64 `json:"planned"`
		// Target is the planned savings value set on the forecast.
		Target       float64       `json:"target"`
		Actual       SavingsTotals `json:"actual"`
		Potential    float64       `json:"potential"`
		PlanVsActual float64       `json:"planVsActual"`
		LostMoney    float64       `json:"lostMoney"`
		Yearly       SavingsTotals `json:"yearly"`
	}

	CategoryLine struct {
		Category       string     `json:"category"`
		Budget         float64    `json:"budget"`
		AdjustedBudget float64    `json:"adjustedBudget"`
		Spent          float64    `json:"spent"`
		Remaining      float64    `json:"remaining"`
		Percent        float64    `json:"percent"`
		Alert          AlertLevel `json:"alert"`
		OverBudget     bool       `json:"overBudget"`
	}

	DeficitAlert struct {
		Year             int     `json:"year"`
		Month            int     `json:"month"`
		Amount           float64 `json:"amount"`
		ReductionPercent int     `json:"reductionPercent"`
	}

	Dashboard struct {
		User                core.UserID    `json:"user"`
		Year                int            `json:"year"`
		Month               int            `json:"month"`
		Income              float64        `json:"income"`
		ActualIncome        *float64       `json:"actualIncome"`
		EffectiveIncome     float64        `json:"effectiveIncome"`
		ReductionRatio      float64        `json:"reductionRatio"`
		TotalBudget         float64        `json:"totalBudget"`
		TotalAdjustedBudget float64        `json:"totalAdjustedBudget"`
		TotalSpent          float64        `json:"totalSpent"`
		Remaining           float64        `json:"remaining"`
		Categories          []CategoryLine `json:"categories"`
		Deficit             *DeficitAlert  `json:"deficit,omitempty"`
		Savings             SavingsSummary `json:"savings"`
	}

	Overview struct {
		TotalIncome        float64 `json:"totalIncome"`
		TotalExpenses      float64 `json:"totalExpenses"`
		Balance            float64 `json:"balance"`
		MonthsWithExpenses int     `json:"monthsWithExpenses"`
	}

	MonthAnalytics struct {
		Month          int     `json:"month"`
		Income         float64 `json:"income"`
		Spent          float64 `json:"spent"`
		Budget         float64 `json:"budget"`
		Overrun        float64 `json:"overrun"`
		Savings        float64 `json:"savings"`
		PlannedSavings float64 `json:"plannedSavings"`
		Bank           float64 `json:"bank"`
		Pension        float64 `json:"pension"`
		LostMoney      float64 `json:"lostMoney"`
	}

	// MonthAmount names a month of the analysed year; Month is 0 when no
	// month qualified.
	MonthAmount struct {
		Month  int     `json:"month"`
		Amount float64 `json:"amount"`
	}

	SavingsEfficiency struct {
		Month      int     `json:"month"`
		Savings    float64 `json:"savings"`
		Efficiency float64 `json:"efficiency"`
	}

	CategoryOverrun struct {
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
	}

	YearlyAnalytics struct {
		Year          int               `json:"year"`
		Months        []MonthAnalytics  `json:"months"`
		WorstOverrun  MonthAmount       `json:"worstOverrun"`
		BestSavings   SavingsEfficiency `json:"bestSavings"`
		WorstLost     MonthAmount       `json:"worstLost"`
		GoalsMet      int               `json:"goalsMet"`
		WorstCategory CategoryOverrun   `json:"worstCategory"`
		YearlyIncome  float64           `json:"yearlyIncome"`
		YearlySpent   float64           `json:"yearlySpent"`
		YearlySavings float64           `json:"yearlySavings"`
		YearlyLost    float64           `json:"yearlyLost"`
	}

	GoalProgress struct {
		Goal       core.WishlistGoal `json:"goal"`
		Percent    float64           `json:"percent"`
		Remaining  float64           `json:"remaining"`
		AvgMonthly float64           `json:"avgMonthly"`
		MonthsLeft int               `json:"monthsLeft"`
		Complete   bool              `json:"complete"`
	}

	CategoryComparison struct {
		Category string                  `json:"category"`
		ByUser   map[core.UserID]float64 `json:"byUser"`
		Total    float64                 `json:"total"`
	}

	HouseholdView struct {
		Year       int                     `json:"year"`
		Month      int                     `json:"month"`
		Income     float64                 `json:"income"`
		Budget     float64                 `json:"budget"`
		Spent      float64                 `json:"spent"`
		Remaining  float64                 `json:"remaining"`
		SpentBy    map[core.UserID]float64 `json:"spentBy"`
		Categories []CategoryComparison    `json:"categories"`
	}

	UserComparison struct {
		Year   int                       `json:"year"`
		Months map[core.UserID][]float64 `json:"months"`
		Totals map[core.UserID]float64   `json:"totals"`
	}

	SearchQuery struct {
		// Users to search; empty means every user.
		Users    []core.UserID
		Text     string
		Category string
	}

	SearchResult struct {
		User     core.UserID  `json:"user"`
		UserName string       `json:"userName"`
		MonthKey string       `json:"monthKey"`
		Expense  core.Expense `json:"expense"`
	}

	TabularImportResult struct {
		Categories int `json:"categories"`
		Forecasts  int `json:"forecasts"`
		Expenses   int `json:"expenses"`
		Skipped    int `json:"skipped"`
	}
)

func totalsOf(s core.Savings) SavingsTotals {
	return SavingsTotals{Bank: s.Bank, Pension: s.Pension, Total: s.Total()}
}
