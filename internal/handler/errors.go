package handler

import (
	"errors"
	"net/http"

	"backend/internal/service"
)

// statusFromError maps the service layer's sentinel errors to HTTP status
// codes. Anything unrecognized is treated as an internal error.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrDuplicateInvoice):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
