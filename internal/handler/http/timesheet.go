package http

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/presence-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TimesheetHandler interface {
	Start(w http.ResponseWriter, r *http.Request)
	BreakStart(w http.ResponseWriter, r *http.Request)
	BreakEnd(w http.ResponseWriter, r *http.Request)
	Stop(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	GetMonth(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	timesheetService timesheet.TimesheetService
}

func NewTimesheetHandler(timesheetService timesheet.TimesheetService) TimesheetHandler {
	return &timesheetHandlerImpl{
		timesheetService: timesheetService,
	}
}

// Start implements TimesheetHandler.
func (h *timesheetHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.timesheetService.Start, "Work started")
}

// BreakStart implements TimesheetHandler.
func (h *timesheetHandlerImpl) BreakStart(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.timesheetService.BreakStart, "Break started")
}

// BreakEnd implements TimesheetHandler.
func (h *timesheetHandlerImpl) BreakEnd(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.timesheetService.BreakEnd, "Break ended")
}

// Stop implements TimesheetHandler.
func (h *timesheetHandlerImpl) Stop(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.timesheetService.Stop, "Work stopped")
}

func (h *timesheetHandlerImpl) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, userID string, tz string) (timesheet.DayResponse, error),
	message string,
) {
	ident, err := identityFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := fn(r.Context(), ident.UserID, ident.Timezone)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// GetToday implements TimesheetHandler.
func (h *timesheetHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	ident, err := identityFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.timesheetService.GetToday(r.Context(), ident.UserID, ident.Timezone)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMonth implements TimesheetHandler.
func (h *timesheetHandlerImpl) GetMonth(w http.ResponseWriter, r *http.Request) {
	ident, err := identityFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	filter := timesheet.MonthFilter{
		UserID: ident.UserID,
		Month:  chi.URLParam(r, "month"),
	}

	result, err := h.timesheetService.GetMonth(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
