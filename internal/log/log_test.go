package log

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelInfo, ComponentApp).WithComponent(ComponentLedger)
	l.Info("hello", FieldUser, "tal")
	if l.Component() != ComponentLedger {
		t.Fatalf("component: %s", l.Component())
	}
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "user=tal") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusNotFound, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l := NewText(&buf, slog.LevelDebug, ComponentHTTP)
		h := RequestLogger(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/users/tal/dashboard?year=2026", nil)
		h.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		if !strings.Contains(out, tt.level) || !strings.Contains(out, "path=/api/users/tal/dashboard") {
			t.Fatalf("status %d: %s", tt.status, out)
		}
	}
}

func TestFromContextFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if l := FromContext(req.Context()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
	var got *Logger
	want := NewText(&bytes.Buffer{}, slog.LevelInfo, ComponentHTTP)
	h := Middleware(want)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != want {
		t.Fatalf("middleware must attach the logger")
	}
}
