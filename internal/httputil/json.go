// Package httputil contains small response helpers shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shoplens/shoplens/pkg/domain"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// DomainError maps a service error onto its HTTP status and writes it.
// Unrecognized errors become an opaque 500 so internals never leak.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrInvalidShopDomain):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrOTPNotFound),
		errors.Is(err, domain.ErrOTPInvalid):
		Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrAccountInactive),
		errors.Is(err, domain.ErrTenantMismatch),
		errors.Is(err, domain.ErrEmailNotRecognized):
		Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrTenantNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUserAlreadyExists),
		errors.Is(err, domain.ErrTenantAlreadyExists):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrStoreConfigMissing):
		Error(w, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, domain.ErrRemoteUnavailable):
		Error(w, http.StatusBadGateway, domain.ErrRemoteUnavailable.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
