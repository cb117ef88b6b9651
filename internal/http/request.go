package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"budgetbook/internal/core"
)

const (
	maxBodyBytes = 5 << 20
	// maxImportBytes bounds a whole-document JSON import.
	maxImportBytes = 32 << 20
)

var errBadRequest = errors.New("bad request")

type userHandler func(w http.ResponseWriter, r *http.Request, user core.UserID)

// withUser resolves the {user} path segment; unknown users get 404.
func (s *Server) withUser(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := core.ParseUserID(r.PathValue("user"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h(w, r, user)
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return data, nil
}

func parseYear(v string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("%w: year %q", core.ErrInvalidMonth, v)
	}
	return year, nil
}

func parseMonth(v string) (int, error) {
	month, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || !core.ValidMonth(month) {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidMonth, v)
	}
	return month, nil
}

// pathYearMonth reads the {year} and {month} path segments.
func pathYearMonth(r *http.Request) (year, month int, err error) {
	if year, err = parseYear(r.PathValue("year")); err != nil {
		return 0, 0, err
	}
	if month, err = parseMonth(r.PathValue("month")); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// queryYearMonth reads optional year and month query parameters,
// defaulting to the month containing now.
func queryYearMonth(r *http.Request, now time.Time) (year, month int, err error) {
	year, month = now.Year(), int(now.Month())
	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		if year, err = parseYear(v); err != nil {
			return 0, 0, err
		}
	}
	if v := q.Get("month"); v != "" {
		if month, err = parseMonth(v); err != nil {
			return 0, 0, err
		}
	}
	return year, month, nil
}

// queryYear reads an optional year query parameter.
func queryYear(r *http.Request, now time.Time) (int, error) {
	if v := r.URL.Query().Get("year"); v != "" {
		return parseYear(v)
	}
	return now.Year(), nil
}

func floatPtr(a *core.Amount) *float64 {
	if a == nil {
		return nil
	}
	f := a.Float()
	return &f
}
