package timesheet

import (
	"context"
)

// TimesheetService defines the presence transitions and read views exposed
// per authenticated user. tz is the identity's reference timezone name; an
// empty value falls back to the configured default. Day keys are always
// computed in that zone, never the client's locale.
type TimesheetService interface {
	// Start opens today's session (CLOSED -> WORKING), creating the day
	// record on the first start of the day.
	Start(ctx context.Context, userID string, tz string) (DayResponse, error)

	// BreakStart moves WORKING -> BREAK, banking the elapsed work time.
	BreakStart(ctx context.Context, userID string, tz string) (DayResponse, error)

	// BreakEnd moves BREAK -> WORKING, banking the elapsed break time.
	BreakEnd(ctx context.Context, userID string, tz string) (DayResponse, error)

	// Stop closes the day (WORKING|BREAK -> CLOSED), crediting the
	// in-flight interval to the active bucket.
	Stop(ctx context.Context, userID string, tz string) (DayResponse, error)

	// GetToday returns today's record with live-computed totals, never
	// mutating state. Absence of a record is not an error.
	GetToday(ctx context.Context, userID string, tz string) (TodayResponse, error)

	// GetMonth returns the month's records with stored totals only.
	GetMonth(ctx context.Context, filter MonthFilter) (MonthResponse, error)
}
