package backend

import (
	"context"

	"budgetbook/internal/sheets"
	"budgetbook/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the wired adapters. Sheets is nil when the
// spreadsheet mirror is disabled; Publishing reports whether saves are
// announced over AMQP.
type BackendResult struct {
	Store      storage.BlobStore
	Sheets     sheets.WorkbookStore
	Publishing bool
	Cleanup    CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Change fan-out, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Sheets SheetsType

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of blob store
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// SheetsType selects the spreadsheet mirror adapter.
type SheetsType string

const (
	NoSheets     SheetsType = "none"
	MemorySheets SheetsType = "memory"
	GoogleSheets SheetsType = "google"
)

func (st SheetsType) IsValid() bool {
	switch st {
	case NoSheets, MemorySheets, GoogleSheets:
		return true
	default:
		return false
	}
}
