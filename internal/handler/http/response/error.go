package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Timesheet domain errors
	case errors.Is(err, timesheet.ErrInvalidTransition):
		UnprocessableEntity(w, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, timesheet.ErrConflictRetry):
		Conflict(w, "Presence state changed concurrently; reload today's state and retry")
	case errors.Is(err, timesheet.ErrDayRecordNotFound):
		NotFound(w, "No day record found")

	// Session audit domain errors
	case errors.Is(err, session.ErrNoOpenSession):
		UnprocessableEntity(w, "NO_OPEN_SESSION", err.Error())
	case errors.Is(err, session.ErrSessionNotFound):
		NotFound(w, "Session audit entry not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
