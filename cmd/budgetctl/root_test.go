package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sheetsmem "budgetbook/internal/sheets/memory"
)

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	cmd := a.rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	_ = a.close()
	return out.String(), err
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "ledger.db")
	a := &app{}

	out, err := run(t, a, "--db", db, "export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, `"users"`) || !strings.Contains(out, `"tal"`) {
		t.Fatalf("export should print the default document: %s", out)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"nope": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, a, "--db", db, "import", bad); err == nil {
		t.Fatalf("import without users must fail")
	}

	good := filepath.Join(dir, "good.json")
	doc := `{"users": {"tal": {"name": "Tal", "categories": ["Fuel"], "recurringExpenses": [{"id": "r1", "category": "Fuel", "amount": 40}]}}}`
	if err := os.WriteFile(good, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, a, "--db", db, "import", good); err != nil {
		t.Fatalf("import: %v", err)
	}

	file := filepath.Join(dir, "out.json")
	if _, err := run(t, a, "--db", db, "export", "--out", file); err != nil {
		t.Fatalf("export to file: %v", err)
	}
	data, err := os.ReadFile(file)
	if err != nil || !strings.Contains(string(data), `"r1"`) {
		t.Fatalf("exported file: %s %v", data, err)
	}
}

func TestApplyRecurringAndReports(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "ledger.db")
	a := &app{}

	doc := filepath.Join(dir, "doc.json")
	body := `{"users": {"ron": {"name": "Ron", "categories": ["Books"], "recurringExpenses": [{"id": "r1", "category": "Books", "amount": 30}]}}}`
	if err := os.WriteFile(doc, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, a, "--db", db, "import", doc); err != nil {
		t.Fatalf("import: %v", err)
	}

	for i := 0; i < 2; i++ {
		out, err := run(t, a, "--db", db, "apply-recurring", "--user", "ron", "--year", "2026", "--month", "2")
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if !strings.Contains(out, "Applied 1 recurring expenses to 2026-02") {
			t.Fatalf("apply output: %s", out)
		}
	}

	out, err := run(t, a, "--db", db, "stats", "--user", "ron")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Books") || !strings.Contains(out, "60.00") {
		t.Fatalf("stats should show both applied expenses: %s", out)
	}

	out, err = run(t, a, "--db", db, "analytics", "--user", "ron", "--year", "2026")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if !strings.Contains(out, "Analytics ron 2026") || !strings.Contains(out, "Spent 60.00") {
		t.Fatalf("analytics output: %s", out)
	}

	if _, err := run(t, a, "--db", db, "apply-recurring", "--user", "dana", "--year", "2026", "--month", "2"); err == nil {
		t.Fatalf("unknown user must fail")
	}
	if _, err := run(t, a, "--db", db, "apply-recurring", "--user", "ron", "--year", "2026", "--month", "13"); err == nil {
		t.Fatalf("invalid month must fail")
	}
}

func TestSheetsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := &app{workbooks: sheetsmem.New()}
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")

	doc := filepath.Join(dir, "doc.json")
	body := `{"users": {"tal": {"name": "Tal", "categories": ["Fuel"], "expenses": {"2026-01": [{"id": "e1", "amount": 25, "category": "Fuel", "date": "2026-01-05", "note": ""}]}}}}`
	if err := os.WriteFile(doc, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, a, "--db", src, "import", doc); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := run(t, a, "--db", src, "sheets-export", "--user", "tal"); err != nil {
		t.Fatalf("sheets export: %v", err)
	}
	out, err := run(t, a, "--db", dst, "sheets-import", "--user", "tal")
	if err != nil {
		t.Fatalf("sheets import: %v", err)
	}
	if !strings.Contains(out, "1 expenses") {
		t.Fatalf("sheets import output: %s", out)
	}
}

func TestResetNeedsConfirmation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	a := &app{}
	if _, err := run(t, a, "--db", db, "reset"); err == nil {
		t.Fatalf("reset without --yes must fail")
	}
	if out, err := run(t, a, "--db", db, "reset", "--yes"); err != nil || !strings.Contains(out, "reset") {
		t.Fatalf("reset: %q %v", out, err)
	}
}

func TestSheetsBackendFromEnvironment(t *testing.T) {
	t.Setenv("SHEETS_BACKEND", "memory")
	t.Setenv("AMQP_URL", "")
	db := filepath.Join(t.TempDir(), "ledger.db")
	a := &app{}
	out, err := run(t, a, "--db", db, "sheets-export", "--user", "ron")
	if err != nil {
		t.Fatalf("sheets export through the configured mirror: %v", err)
	}
	if !strings.Contains(out, "sheets for ron") {
		t.Fatalf("sheets export output: %s", out)
	}
}

func TestInvalidBackendConfig(t *testing.T) {
	t.Setenv("SHEETS_BACKEND", "google")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	db := filepath.Join(t.TempDir(), "ledger.db")
	if _, err := run(t, &app{}, "--db", db, "export"); err == nil {
		t.Fatalf("google sheets without a spreadsheet id must fail")
	}
}
