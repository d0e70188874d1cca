package timesheet

import (
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

// ========================================
// TIMESHEET DTOs
// ========================================

type DayResponse struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	Status       string  `json:"status"`
	FirstStartAt *string `json:"first_start_at"`
	LastActionAt *string `json:"last_action_at"`
	LastStopAt   *string `json:"last_stop_at"`
	WorkMs       int64   `json:"work_ms"`
	BreakMs      int64   `json:"break_ms"`
}

type ActionResponse struct {
	Action    string `json:"action"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// TodayResponse carries today's record with live-computed totals. NoSession
// reports the absence of a record without treating it as an error.
type TodayResponse struct {
	NoSession bool             `json:"no_session"`
	Day       *DayResponse     `json:"day,omitempty"`
	Actions   []ActionResponse `json:"actions,omitempty"`
}

type MonthResponse struct {
	Month        string        `json:"month"`
	Days         []DayResponse `json:"days"`
	TotalWorkMs  int64         `json:"total_work_ms"`
	TotalBreakMs int64         `json:"total_break_ms"`
}

type MonthFilter struct {
	UserID string
	Month  string // YYYY-MM
}

func (f *MonthFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if _, ok := validator.IsValidMonth(f.Month); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format("2006-01-02 15:04:05.000")
	return &format
}

// NewDayResponse maps a record to its response using the given totals.
// Callers pass either stored totals (month view) or live totals (today view).
func NewDayResponse(rec DayRecord, workMs, breakMs int64) DayResponse {
	return DayResponse{
		ID:           rec.ID,
		Date:         rec.DateKey,
		Status:       string(rec.Status),
		FirstStartAt: timePtrToString(rec.FirstStartAt),
		LastActionAt: timePtrToString(rec.LastActionAt),
		LastStopAt:   timePtrToString(rec.LastStopAt),
		WorkMs:       workMs,
		BreakMs:      breakMs,
	}
}
