package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
	"budgetbook/internal/sheets"

	"github.com/google/uuid"
)

// Server serves the ledger as a JSON API.
type Server struct {
	http.Server
	ledger    *ledger.Ledger
	workbooks sheets.WorkbookStore
	limiter   *writeLimiter
	metrics   *securityMetrics
	logger    *log.Logger

	shutdownOnce sync.Once
}

// NewServer wires the routes and middleware. workbooks may be nil, in
// which case the sheets endpoints answer 503.
func NewServer(addr string, l *ledger.Ledger, workbooks sheets.WorkbookStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:    l,
		workbooks: workbooks,
		limiter:   newWriteLimiter(defaultWritesPerMinute),
		metrics:   &securityMetrics{},
		logger:    logger,
	}

	var handler http.Handler = s.routes()
	handler = s.withSecurity(handler)
	handler = log.RequestLogger(logger)(handler)
	handler = log.RequestIDMiddleware(requestID)(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	user := func(pattern string, h userHandler) {
		mux.HandleFunc(pattern, s.withUser(h))
	}

	user("GET /api/users/{user}/dashboard", s.handleDashboard)
	user("GET /api/users/{user}/overview", s.handleOverview)
	user("GET /api/users/{user}/months", s.handleMonths)
	user("GET /api/users/{user}/analytics/{year}", s.handleAnalytics)

	user("GET /api/users/{user}/forecasts/{year}/{month}", s.handleGetForecast)
	user("PUT /api/users/{user}/forecasts/{year}/{month}", s.handlePutForecast)
	user("PUT /api/users/{user}/budgets/{year}/{month}", s.handlePutBudget)
	user("POST /api/users/{user}/budgets/{year}/{month}/copy", s.handleCopyBudget)
	user("POST /api/users/{user}/income/{year}/{month}/copy", s.handleCopyIncome)

	user("GET /api/users/{user}/expenses/{year}/{month}", s.handleListExpenses)
	user("POST /api/users/{user}/expenses/{year}/{month}", s.handleCreateExpense)
	user("PUT /api/users/{user}/expenses/{year}/{month}/{id}", s.handleUpdateExpense)
	user("DELETE /api/users/{user}/expenses/{year}/{month}/{id}", s.handleDeleteExpense)
	user("POST /api/users/{user}/installments", s.handleInstallments)

	user("GET /api/users/{user}/categories", s.handleListCategories)
	user("POST /api/users/{user}/categories", s.handleAddCategory)
	user("GET /api/users/{user}/categories/stats", s.handleCategoryStats)
	user("PUT /api/users/{user}/categories/{name}", s.handleRenameCategory)
	user("DELETE /api/users/{user}/categories/{name}", s.handleDeleteCategory)

	user("GET /api/users/{user}/savings/{year}/{month}", s.handleGetSavings)
	user("PUT /api/users/{user}/savings/{year}/{month}", s.handlePutSavings)

	user("GET /api/users/{user}/recurring", s.handleListRecurring)
	user("POST /api/users/{user}/recurring", s.handleAddRecurring)
	user("DELETE /api/users/{user}/recurring/{id}", s.handleDeleteRecurring)
	user("POST /api/users/{user}/recurring/apply/{year}/{month}", s.handleApplyRecurring)

	user("GET /api/users/{user}/wishlist", s.handleListWishlist)
	user("POST /api/users/{user}/wishlist", s.handleAddWishlist)
	user("PUT /api/users/{user}/wishlist/{id}", s.handleUpdateWishlist)
	user("DELETE /api/users/{user}/wishlist/{id}", s.handleDeleteWishlist)

	user("POST /api/users/{user}/sheets/export", s.handleSheetsExport)
	user("POST /api/users/{user}/sheets/import", s.handleSheetsImport)

	mux.HandleFunc("GET /api/household", s.handleHousehold)
	mux.HandleFunc("GET /api/comparison/{year}", s.handleComparison)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)

	return mux
}

// withSecurity sets the response security headers, logs suspicious
// requests and rate limits writes per client IP.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")

		ip := clientIP(r)
		if reason := suspicion(r); reason != "" {
			s.metrics.recordSuspicious()
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				"reason", reason,
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.UserAgent())
		}

		if !s.limiter.take(ip, writeCost(r), s.metrics) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, ip,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ready",
		"sheets":        s.workbooks != nil,
		"rateLimitHits": atomic.LoadInt64(&s.metrics.rateLimitHits),
		"suspicious":    atomic.LoadInt64(&s.metrics.suspiciousRequests),
	})
}

// Shutdown stops the listener and the rate limiter cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(s.limiter.stop)
	return s.Server.Shutdown(ctx)
}

// requestID honours an incoming X-Request-ID and otherwise mints one.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" && len(id) <= 64 {
		return id
	}
	return uuid.NewString()
}
