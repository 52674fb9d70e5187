package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ghostwriter/internal/domain"
)

const maxBodyBytes = 64 << 10

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	StatusCode int    `json:"statusCode"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, envelope{Error: &errorBody{Message: msg, Code: errCode, StatusCode: code}})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrWeakPassword):
		writeFailure(w, http.StatusBadRequest, "WEAK_PASSWORD", err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		writeFailure(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Invalid or missing fields")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeFailure(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeFailure(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	case errors.Is(err, domain.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeFailure(w, http.StatusConflict, "ALREADY_EXISTS", "Already exists")
	case errors.Is(err, context.DeadlineExceeded):
		writeFailure(w, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out")
	case errors.Is(err, domain.ErrAllProvidersFailed), errors.Is(err, domain.ErrNoProviders):
		writeFailure(w, http.StatusServiceUnavailable, "LLM_UNAVAILABLE", "Reply suggestions are temporarily unavailable")
	default:
		writeFailure(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
	}
}

// decodeJSON reads a bounded JSON body into v. An empty or malformed body is
// domain.ErrInvalidArgument.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return domain.ErrInvalidArgument
	}
	return nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrInvalidArgument
	}
	return n, nil
}

func strconvSeconds(d time.Duration) string {
	return strconv.Itoa(int(d.Seconds()))
}
