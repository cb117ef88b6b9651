package core

// Sheet names of the tabular export.
const (
	SheetCategories = "Categories"
	SheetForecasts  = "Forecasts"
	SheetExpenses   = "Expenses"
)

// BudgetColumnPrefix prefixes per-category budget columns on the
// Forecasts sheet.
const BudgetColumnPrefix = "Budget: "

// DefaultImportCategory is assigned to imported rows with no category.
const DefaultImportCategory = "Other"

type (
	// Workbook is a spreadsheet-shaped view of one user's data.
	Workbook struct {
		Sheets []Sheet
	}

	// Sheet is a named table. Header holds the column names; each row
	// holds cell values (string, float64, or nil for empty cells).
	Sheet struct {
		Name   string
		Header []string
		Rows   [][]any
	}
)

// Sheet returns the sheet called name, or nil.
func (w Workbook) Sheet(name string) *Sheet {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i]
		}
	}
	return nil
}

// Column returns the index of the header column, or -1.
func (s *Sheet) Column(name string) int {
	for i, h := range s.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row/col, nil when out of range.
func Cell(row []any, col int) any {
	if col < 0 || col >= len(row) {
		return nil
	}
	return row[col]
}
