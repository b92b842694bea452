package identity

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated indicates the request carried no resolvable actor.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrUserNotFound indicates the requested directory user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden indicates the acting user lacks the required capability.
	ErrForbidden = errors.New("forbidden")
)

// MapHTTPStatus maps identity errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrUserNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
