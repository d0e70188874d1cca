package timesheet

import (
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/timesheet"
)

// applyTransition mutates rec in place according to the presence state
// machine. Accrued buckets are only ever increased; the interval since
// LastActionAt is banked into whichever bucket was active before the
// transition. Illegal actions return ErrInvalidTransition and leave rec
// untouched.
func applyTransition(rec *timesheet.DayRecord, action timesheet.Action, now time.Time) error {
	if rec.LastActionAt != nil && now.Before(*rec.LastActionAt) {
		// Clock skew: never produce a negative accrual. ComputeLive
		// clamps the delta to zero below.
		slog.Warn("presence transition with reference instant before last action, clamping",
			"day_record_id", rec.ID,
			"user_id", rec.UserID,
			"last_action_at", *rec.LastActionAt,
			"now", now)
	}

	switch action {
	case timesheet.ActionStart:
		if rec.Status != timesheet.StatusClosed {
			return timesheet.ErrInvalidTransition
		}
		rec.Status = timesheet.StatusWorking
		if rec.FirstStartAt == nil {
			rec.FirstStartAt = &now
		}

	case timesheet.ActionBreak:
		if rec.Status != timesheet.StatusWorking {
			return timesheet.ErrInvalidTransition
		}
		rec.AccruedWorkMs, rec.AccruedBreakMs = timesheet.ComputeLive(*rec, now)
		rec.Status = timesheet.StatusBreak

	case timesheet.ActionResume:
		if rec.Status != timesheet.StatusBreak {
			return timesheet.ErrInvalidTransition
		}
		rec.AccruedWorkMs, rec.AccruedBreakMs = timesheet.ComputeLive(*rec, now)
		rec.Status = timesheet.StatusWorking

	case timesheet.ActionStop:
		if rec.Status != timesheet.StatusWorking && rec.Status != timesheet.StatusBreak {
			return timesheet.ErrInvalidTransition
		}
		rec.AccruedWorkMs, rec.AccruedBreakMs = timesheet.ComputeLive(*rec, now)
		rec.Status = timesheet.StatusClosed
		rec.LastStopAt = &now

	default:
		return timesheet.ErrInvalidTransition
	}

	rec.LastActionAt = &now
	return nil
}
