package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
	sheetsmem "budgetbook/internal/sheets/memory"
	"budgetbook/internal/storage/memory"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestServer(t *testing.T, withSheets bool) (*Server, *ledger.Ledger) {
	t.Helper()
	n := 0
	l := ledger.Open(context.Background(), memory.New(),
		ledger.WithLogger(quietLogger()),
		ledger.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		ledger.WithClock(func() time.Time { return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC) }),
	)
	var srv *Server
	if withSheets {
		srv = NewServer(":0", l, sheetsmem.New(), quietLogger())
	} else {
		srv = NewServer(":0", l, nil, quietLogger())
	}
	t.Cleanup(srv.limiter.stop)
	return srv, l
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t, false)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("%s missing security headers", path)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s missing request id", path)
		}
	}
}

func TestRoutingErrors(t *testing.T) {
	srv, _ := newTestServer(t, false)
	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/users/dana/dashboard", http.StatusNotFound},
		{http.MethodGet, "/api/users/tal/expenses/2026/13", http.StatusBadRequest},
		{http.MethodGet, "/api/users/tal/expenses/year/3", http.StatusBadRequest},
		{http.MethodGet, "/api/users/tal/dashboard?month=0", http.StatusBadRequest},
		{http.MethodGet, "/api/household?month=x", http.StatusBadRequest},
		{http.MethodGet, "/api/search?user=dana", http.StatusNotFound},
		{http.MethodDelete, "/api/users/tal/recurring/nope", http.StatusNotFound},
		{http.MethodPost, "/api/users/tal/expenses/2026/3", http.StatusBadRequest},
		{http.MethodGet, "/api/users/tal/dashboard", http.StatusOK},
		{http.MethodGet, "/api/users/ron/overview", http.StatusOK},
		{http.MethodGet, "/api/comparison/2026", http.StatusOK},
	}
	for _, tt := range tests {
		rr := do(t, srv, tt.method, tt.path, "")
		if rr.Code != tt.want {
			t.Fatalf("%s %s: status=%d want %d body=%s", tt.method, tt.path, rr.Code, tt.want, rr.Body.String())
		}
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv, l := newTestServer(t, false)

	rr := do(t, srv, http.MethodPost, "/api/users/tal/expenses/2026/3", `{"amount": "42.5", "category": "Fuel", "note": "station"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		OK bool   `json:"ok"`
		ID string `json:"id"`
	}
	decode(t, rr, &created)
	if !created.OK || created.ID != "id-1" {
		t.Fatalf("create body: %+v", created)
	}

	rr = do(t, srv, http.MethodGet, "/api/users/tal/expenses/2026/3", "")
	var list []core.Expense
	decode(t, rr, &list)
	if len(list) != 1 || list[0].Date != "2026-03-01" || list[0].Amount != 42.5 {
		t.Fatalf("list: %+v", list)
	}

	rr = do(t, srv, http.MethodPut, "/api/users/tal/expenses/2026/3/id-1", `{"amount": 50, "date": "2026-04-02"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d", rr.Code)
	}
	if got := l.Expenses(core.UserTal, 2026, 4); len(got) != 1 || got[0].Amount != 50 {
		t.Fatalf("expense should move to april: %+v", got)
	}

	rr = do(t, srv, http.MethodDelete, "/api/users/tal/expenses/2026/3/id-1", "")
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), `"ok":false`) {
		t.Fatalf("delete from old month: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodDelete, "/api/users/tal/expenses/2026/4/id-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/users/ron/expenses/2026/3", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("empty list must encode as []: %s", rr.Body.String())
	}

	rr = do(t, srv, http.MethodPost, "/api/users/tal/expenses/2026/3", `{"amount": 1, "category": ""}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty category status=%d", rr.Code)
	}
}

func TestInstallments(t *testing.T) {
	srv, l := newTestServer(t, false)
	rr := do(t, srv, http.MethodPost, "/api/users/ron/installments", `{"total": 900, "payments": 3, "category": "Tech", "date": "2026-11-20"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if len(l.Expenses(core.UserRon, 2027, 1)) != 1 {
		t.Fatalf("third payment should land in january")
	}
}

func TestForecastUpdate(t *testing.T) {
	srv, l := newTestServer(t, false)

	rr := do(t, srv, http.MethodPut, "/api/users/tal/forecasts/2026/3", `{"income": 10000, "actualIncome": 8000, "plannedSavings": 500}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	f := l.Forecast(core.UserTal, 2026, 3)
	if f.Income != 10000 || f.ActualIncome == nil || *f.ActualIncome != 8000 || f.PlannedSavings != 500 {
		t.Fatalf("forecast: %+v", f)
	}

	do(t, srv, http.MethodPut, "/api/users/tal/forecasts/2026/3", `{"actualIncome": null}`)
	f = l.Forecast(core.UserTal, 2026, 3)
	if f.ActualIncome != nil || f.Income != 10000 {
		t.Fatalf("null must clear actual income only: %+v", f)
	}

	do(t, srv, http.MethodPut, "/api/users/tal/budgets/2026/3", `{"category": "Fuel", "amount": 1000}`)
	for _, body := range []string{`{"actualIncome": "abc"}`, `{"actualIncome": ""}`, `{"actualIncome": {}}`} {
		do(t, srv, http.MethodPut, "/api/users/tal/forecasts/2026/3", `{"actualIncome": 8000}`)
		if rr := do(t, srv, http.MethodPut, "/api/users/tal/forecasts/2026/3", body); rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", body, rr.Code)
		}
		if f := l.Forecast(core.UserTal, 2026, 3); f.ActualIncome != nil {
			t.Fatalf("%s must read as not recorded: %v", body, *f.ActualIncome)
		}
		if got := l.AdjustedBudget(core.UserTal, 2026, 3, "Fuel"); got != 1000 {
			t.Fatalf("%s adjusted budget: got %v, want 1000", body, got)
		}
	}

	rr = do(t, srv, http.MethodPut, "/api/users/tal/budgets/2026/3", `{"category": "Fuel", "amount": 400}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("budget status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodPost, "/api/users/tal/budgets/2026/3/copy", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("copy status=%d", rr.Code)
	}
	if got := l.Forecast(core.UserTal, 2026, 11).Budgets["Fuel"]; got != 400 {
		t.Fatalf("copied budget: %v", got)
	}
	rr = do(t, srv, http.MethodPost, "/api/users/tal/income/2026/3/copy", "")
	if rr.Code != http.StatusOK || l.Forecast(core.UserTal, 2026, 7).Income != 10000 {
		t.Fatalf("income copy: %d", rr.Code)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	srv, l := newTestServer(t, false)

	if rr := do(t, srv, http.MethodPost, "/api/users/tal/categories", `{"name": "Sailing"}`); rr.Code != http.StatusCreated {
		t.Fatalf("add status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/users/tal/categories", `{"name": "Sailing"}`); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPut, "/api/users/tal/categories/Nope", `{"name": "X"}`); rr.Code != http.StatusNotFound {
		t.Fatalf("rename missing status=%d", rr.Code)
	}
	_, _ = l.AddExpense(context.Background(), core.UserTal, ledger.ExpenseInput{Amount: 20, Category: "Sailing", Date: "2026-03-03"})
	if rr := do(t, srv, http.MethodPut, "/api/users/tal/categories/Sailing", `{"name": "Boats"}`); rr.Code != http.StatusOK {
		t.Fatalf("rename status=%d", rr.Code)
	}
	if got := l.Expenses(core.UserTal, 2026, 3); got[0].Category != "Boats" {
		t.Fatalf("rename must cascade: %+v", got)
	}

	rr := do(t, srv, http.MethodGet, "/api/users/tal/categories/stats?category=Boats", "")
	var st ledger.CategoryStats
	decode(t, rr, &st)
	if st.Category != "Boats" || st.Total != 20 {
		t.Fatalf("stats: %+v", st)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/users/tal/categories/Boats", ""); rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/users/tal/categories/Boats", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", rr.Code)
	}
}

func TestSavingsEndpoints(t *testing.T) {
	srv, l := newTestServer(t, false)
	if rr := do(t, srv, http.MethodPut, "/api/users/ron/savings/2026/2", `{"kind": "pension", "amount": 300}`); rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPut, "/api/users/ron/savings/2026/2", `{"kind": "crypto", "amount": 1}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind status=%d", rr.Code)
	}
	if got := l.ActualSavings(core.UserRon, 2026, 2); got.Pension != 300 || got.Bank != 0 {
		t.Fatalf("savings: %+v", got)
	}
	if rr := do(t, srv, http.MethodGet, "/api/users/ron/savings/2026/2", ""); rr.Code != http.StatusOK {
		t.Fatalf("get status=%d", rr.Code)
	}
}

func TestRecurringApplyIsNotIdempotent(t *testing.T) {
	srv, l := newTestServer(t, false)
	rr := do(t, srv, http.MethodPost, "/api/users/ron/recurring", `{"category": "Books", "amount": 30}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status=%d", rr.Code)
	}
	for i := 0; i < 2; i++ {
		rr = do(t, srv, http.MethodPost, "/api/users/ron/recurring/apply/2026/5", "")
		var res struct {
			Applied int `json:"applied"`
		}
		decode(t, rr, &res)
		if res.Applied != 1 {
			t.Fatalf("apply %d: %+v", i, res)
		}
	}
	if got := len(l.Expenses(core.UserRon, 2026, 5)); got != 2 {
		t.Fatalf("expected 2 expenses after two applies, got %d", got)
	}
}

func TestWishlistEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rr := do(t, srv, http.MethodPost, "/api/users/tal/wishlist", `{"name": "Bike", "targetAmount": 1000, "savedAmount": 250}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPut, "/api/users/tal/wishlist/id-1", `{"savedAmount": 500}`); rr.Code != http.StatusOK {
		t.Fatalf("update status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/api/users/tal/wishlist", "")
	var progress []ledger.GoalProgress
	decode(t, rr, &progress)
	if len(progress) != 1 || progress[0].Percent != 50 || progress[0].Remaining != 500 {
		t.Fatalf("progress: %+v", progress)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/users/tal/wishlist/missing", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("delete missing status=%d", rr.Code)
	}
}

func TestExportImport(t *testing.T) {
	srv, l := newTestServer(t, false)
	_, _ = l.AddExpense(context.Background(), core.UserTal, ledger.ExpenseInput{Amount: 12, Category: "Fuel", Date: "2026-03-03"})

	rr := do(t, srv, http.MethodGet, "/api/export", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Header().Get("Content-Disposition"), "budgetbook-2026-03-15.json") {
		t.Fatalf("export: %d %v", rr.Code, rr.Header())
	}
	exported := rr.Body.String()

	if rr := do(t, srv, http.MethodPost, "/api/import", `{"nope": true}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("rejected import status=%d", rr.Code)
	}
	if len(l.Expenses(core.UserTal, 2026, 3)) != 1 {
		t.Fatalf("rejected import must not touch the store")
	}

	_, _ = l.AddExpense(context.Background(), core.UserTal, ledger.ExpenseInput{Amount: 99, Category: "Fuel", Date: "2026-03-04"})
	if rr := do(t, srv, http.MethodPost, "/api/import", exported); rr.Code != http.StatusOK {
		t.Fatalf("import status=%d", rr.Code)
	}
	if got := l.TotalSpent(core.UserTal, 2026, 3); got != 12 {
		t.Fatalf("import must replace the store, spent=%v", got)
	}
}

func TestSheetsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, false)
	if rr := do(t, srv, http.MethodPost, "/api/users/tal/sheets/export", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("without sheets backend status=%d", rr.Code)
	}

	srv, l := newTestServer(t, true)
	_ = l.SetBudget(context.Background(), core.UserTal, 2026, 3, "Fuel", 300)
	_, _ = l.AddExpense(context.Background(), core.UserTal, ledger.ExpenseInput{Amount: 18, Category: "Fuel", Date: "2026-03-03"})
	if rr := do(t, srv, http.MethodPost, "/api/users/tal/sheets/export", ""); rr.Code != http.StatusOK {
		t.Fatalf("export status=%d body=%s", rr.Code, rr.Body.String())
	}
	_ = l.Reset(context.Background())

	rr := do(t, srv, http.MethodPost, "/api/users/tal/sheets/import", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("import status=%d", rr.Code)
	}
	var res ledger.TabularImportResult
	decode(t, rr, &res)
	if res.Expenses != 1 || res.Forecasts != 1 {
		t.Fatalf("import result: %+v", res)
	}
	if got := l.TotalSpent(core.UserTal, 2026, 3); got != 18 {
		t.Fatalf("spent after sheets round trip: %v", got)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	srv, _ := newTestServer(t, false)
	srv.limiter.perMinute = 3
	for i := 0; i < 3; i++ {
		if rr := do(t, srv, http.MethodPost, "/api/users/tal/categories", fmt.Sprintf(`{"name": "C%d"}`, i)); rr.Code != http.StatusCreated {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodPost, "/api/users/tal/categories", `{"name": "C9"}`)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("expected 429 with Retry-After, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/users/tal/categories", ""); rr.Code != http.StatusOK {
		t.Fatalf("reads are not limited, got %d", rr.Code)
	}
}

func TestImportIsAHeavyWrite(t *testing.T) {
	srv, _ := newTestServer(t, false)
	srv.limiter.perMinute = heavyWriteCost + 1
	body := `{"users": {"tal": {"name": "Tal"}}}`
	if rr := do(t, srv, http.MethodPost, "/api/import", body); rr.Code != http.StatusOK {
		t.Fatalf("first import status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/import", body); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second import should exhaust the bucket, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/users/tal/categories", `{"name": "Cheap"}`); rr.Code != http.StatusCreated {
		t.Fatalf("a plain write still fits, got %d", rr.Code)
	}
}
