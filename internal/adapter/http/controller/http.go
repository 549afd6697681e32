package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/api-sage/wallet-ledger-engine/internal/domain"
	"github.com/api-sage/wallet-ledger-engine/internal/resilience"
)

func wrap(handler http.Handler, authMiddleware func(http.Handler) http.Handler) http.Handler {
	if authMiddleware != nil {
		return authMiddleware(handler)
	}
	return handler
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusForError maps service errors onto HTTP statuses. Validation errors
// are recognized by the response message the services set; everything typed
// maps explicitly.
func statusForError(err error, message string) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccountTransfer):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, resilience.ErrOpen):
		return http.StatusServiceUnavailable
	case message == "validation failed":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
