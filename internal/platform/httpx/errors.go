package httpx

import (
	"errors"
	"net/http"

	"github.com/gestion-users/gestion-users/internal/shared"
)

// StatusFor maps a domain error kind to an HTTP status. Conflicts are
// reported as 400 like validation failures; anything unclassified is a 500.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
