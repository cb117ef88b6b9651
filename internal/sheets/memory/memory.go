package memory

import (
	"context"
	"sync"

	"budgetbook/internal/core"
	ports "budgetbook/internal/sheets"
)

var _ ports.WorkbookStore = (*Store)(nil)

// Store keeps one workbook per user in memory.
type Store struct {
	mu     sync.Mutex
	books  map[core.UserID]core.Workbook
	writes int
}

func New() *Store {
	return &Store{books: map[core.UserID]core.Workbook{}}
}

// WriteWorkbook replaces the stored workbook for user.
func (s *Store) WriteWorkbook(_ context.Context, user core.UserID, wb core.Workbook) error {
	if !user.Valid() {
		return core.ErrUnknownUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[user] = copyWorkbook(wb)
	s.writes++
	return nil
}

// ReadWorkbook returns a copy of the user's workbook, empty when never written.
func (s *Store) ReadWorkbook(_ context.Context, user core.UserID) (core.Workbook, error) {
	if !user.Valid() {
		return core.Workbook{}, core.ErrUnknownUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyWorkbook(s.books[user]), nil
}

// Writes reports how many workbooks have been written.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func copyWorkbook(wb core.Workbook) core.Workbook {
	out := core.Workbook{Sheets: make([]core.Sheet, 0, len(wb.Sheets))}
	for _, sh := range wb.Sheets {
		rows := make([][]any, len(sh.Rows))
		for i, r := range sh.Rows {
			rows[i] = append([]any(nil), r...)
		}
		out.Sheets = append(out.Sheets, core.Sheet{
			Name:   sh.Name,
			Header: append([]string(nil), sh.Header...),
			Rows:   rows,
		})
	}
	return out
}
