package google

import (
	"fmt"
	"strings"

	"budgetbook/internal/core"
)

// tabTitle names the tab holding one user's sheet, e.g. "tal Expenses".
func tabTitle(user core.UserID, sheet string) string {
	return fmt.Sprintf("%s %s", user, sheet)
}

// quoteTitle quotes a tab title for A1 notation.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func missingTabs(existing, wanted []string) []string {
	have := map[string]struct{}{}
	for _, t := range existing {
		have[t] = struct{}{}
	}
	var out []string
	for _, t := range wanted {
		if _, ok := have[t]; ok {
			continue
		}
		have[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// toValues lays a sheet out as header row plus data rows. Empty cells
// are written as empty strings so a rewrite never keeps stale values.
func toValues(sh core.Sheet) [][]interface{} {
	out := make([][]interface{}, 0, len(sh.Rows)+1)
	header := make([]interface{}, len(sh.Header))
	for i, h := range sh.Header {
		header[i] = h
	}
	out = append(out, header)
	for _, row := range sh.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			if v == nil {
				v = ""
			}
			cells[i] = v
		}
		out = append(out, cells)
	}
	return out
}

// parseValues converts a values matrix (as returned by Sheets API) back
// into a sheet. The first non-empty row is the header; blank rows are
// dropped and empty strings become nil cells.
func parseValues(name string, values [][]interface{}) (core.Sheet, bool) {
	start := -1
	for i, row := range values {
		if !blankRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return core.Sheet{}, false
	}
	sh := core.Sheet{Name: name, Header: toStrings(values[start])}
	for _, row := range values[start+1:] {
		if blankRow(row) {
			continue
		}
		cells := make([]any, len(row))
		for i, v := range row {
			if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			cells[i] = v
		}
		sh.Rows = append(sh.Rows, cells)
	}
	return sh, true
}

func blankRow(row []interface{}) bool {
	for _, v := range row {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return false
	}
	return true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
