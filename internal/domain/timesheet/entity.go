package timesheet

import (
	"time"
)

// Status is the presence state of a day record.
type Status string

const (
	StatusWorking Status = "WORKING"
	StatusBreak   Status = "BREAK"
	StatusClosed  Status = "CLOSED"
)

// Action is a requested transition on a day record.
type Action string

const (
	ActionStart  Action = "START"
	ActionBreak  Action = "BREAK"
	ActionResume Action = "RESUME"
	ActionStop   Action = "STOP"
)

// DayRecord is the per-user per-calendar-day accounting entity. DateKey is
// computed once in the user's reference timezone and never changes.
// AccruedWorkMs/AccruedBreakMs are the durations banked as of LastActionAt;
// while the record is open the true totals also include the interval since
// LastActionAt (see ComputeLive). Version backs the optimistic write check.
type DayRecord struct {
	ID             string
	UserID         string
	DateKey        string
	Status         Status
	FirstStartAt   *time.Time
	LastActionAt   *time.Time
	LastStopAt     *time.Time
	AccruedWorkMs  int64
	AccruedBreakMs int64
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DayAction is one line of a day record's append-only transition log.
type DayAction struct {
	ID          string
	DayRecordID string
	Action      Action
	Detail      string
	CreatedAt   time.Time
}

// DateKeyFor returns the YYYY-MM-DD day key of t in loc.
func DateKeyFor(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// EndOfDay returns the last accounted instant of dateKey in loc,
// 23:59:59.999 local. Reconciled closes never credit time past it.
func EndOfDay(dateKey string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", dateKey, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.AddDate(0, 0, 1).Add(-time.Millisecond), nil
}
