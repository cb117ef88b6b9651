package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
)

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{OK: false, Error: msg})
}

// writeResult answers {"ok": true} or, for a mutation that found
// nothing to act on, 404 with {"ok": false}.
func writeResult(w http.ResponseWriter, ok bool) {
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{OK: false})
		return
	}
	writeJSON(w, http.StatusOK, errorResponse{OK: true})
}

// statusFor maps ledger and domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownUser):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrUnknownSavingsKind),
		errors.Is(err, core.ErrMissingUsers),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response for err. Server-side failures are
// logged; their message is not echoed to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
			"Request failed", err, log.ComponentHTTP, op, nil)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
