package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// apiError carries the status a handler wants to answer with. Any other
// error reaching writeError is an upstream failure and maps to 400.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string { return e.Message }

func badRequest(format string, args ...any) error {
	return &apiError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func notFound(msg string) error {
	return &apiError{Status: http.StatusNotFound, Message: msg}
}

func unauthorized(msg string) error {
	return &apiError{Status: http.StatusUnauthorized, Message: msg}
}

// upstream prefixes a backend failure so the caller sees what failed.
func upstream(what string, err error) error {
	return &apiError{Status: http.StatusBadRequest, Message: fmt.Sprintf("%s: %v", what, err)}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var ae *apiError
	switch {
	case errors.As(err, &ae):
		writeJSON(w, ae.Status, map[string]string{"error": ae.Message})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}
