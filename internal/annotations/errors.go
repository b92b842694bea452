package annotations

import (
	"errors"
	"net/http"

	"github.com/tally-ai/taggo/internal/identity"
	"github.com/tally-ai/taggo/pkg/storage"
)

// Domain errors for annotation workflow operations. Every failure path
// leaves the record's status and history exactly as they were.
var (
	ErrNotFound          = errors.New("annotation not found")
	ErrDuplicate         = errors.New("annotation already exists")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidStage      = errors.New("invalid stage")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCannotReject      = errors.New("annotation has no labeller or reviewer on record")
	ErrForbidden         = errors.New("operation not permitted")
	ErrNoEligibleUsers   = errors.New("no users found in the specified group")
	ErrInvalidPercentage = errors.New("percentage must be between 0 and 100")
	ErrInvalidFile       = errors.New("invalid file")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus maps workflow domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoEligibleUsers):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidStage),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrCannotReject),
		errors.Is(err, ErrInvalidPercentage),
		errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, identity.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, identity.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
