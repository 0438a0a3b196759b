package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type statusBody struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps engine errors onto HTTP statuses. Remote failures stay
// opaque to the client; the cause is already logged where it happened.
func writeError(w http.ResponseWriter, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: ve.Error(), Field: ve.Field})
		return
	}
	var nf *core.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: nf.Error()})
		return
	}
	if errors.Is(err, core.ErrNothingToExport) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	var re *core.RemoteError
	if errors.As(err, &re) {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "remote store unavailable"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

// clientIP extracts the originating client address, honoring the first
// X-Forwarded-For hop when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// sanitizeInput trims whitespace and strips control characters except
// tab and newline.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
