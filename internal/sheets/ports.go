package sheets

import (
	"context"

	"budgetbook/internal/core"
)

// Ports for spreadsheet adapters mirroring a user's tabular view.
type (
	WorkbookWriter interface {
		// WriteWorkbook replaces the user's tabs with the sheets in wb.
		WriteWorkbook(ctx context.Context, user core.UserID, wb core.Workbook) error
	}

	WorkbookReader interface {
		// ReadWorkbook returns the user's tabs. Missing tabs are omitted.
		ReadWorkbook(ctx context.Context, user core.UserID) (core.Workbook, error)
	}

	WorkbookStore interface {
		WorkbookWriter
		WorkbookReader
	}
)
