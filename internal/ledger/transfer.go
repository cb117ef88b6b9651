package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
)

// ExportJSON serialises the whole document as indented JSON.
func (l *Ledger) ExportJSON() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := json.MarshalIndent(l.doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// ImportJSON replaces the whole document with data. It reports false and
// leaves the current document untouched when data does not parse or has
// no users collection. The returned error is a persistence failure.
func (l *Ledger) ImportJSON(ctx context.Context, data []byte) (bool, error) {
	doc, err := core.DecodeDocument(data)
	if err != nil {
		l.logger.WarnContext(ctx, "Rejected document import", log.FieldError, err)
		return false, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.doc = doc
	l.logger.InfoContext(ctx, "Document imported", "users", len(doc.Users))
	return true, l.persist(ctx)
}
