package timesheet

import "time"

// ComputeLive returns the day's true work/break totals at the reference
// instant: the banked accruals plus the interval since LastActionAt credited
// to whichever bucket is currently active. Closed records return their stored
// totals untouched. Pure: same inputs, same outputs, no mutation, so it is
// shared by the read path, the transition engine and the reconciler.
//
// A reference instant earlier than LastActionAt (clock skew) clamps the live
// interval to zero; totals never go negative.
func ComputeLive(rec DayRecord, ref time.Time) (workMs, breakMs int64) {
	workMs = rec.AccruedWorkMs
	breakMs = rec.AccruedBreakMs

	if rec.Status == StatusClosed || rec.LastActionAt == nil {
		return workMs, breakMs
	}

	elapsed := ref.Sub(*rec.LastActionAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	switch rec.Status {
	case StatusWorking:
		workMs += elapsed
	case StatusBreak:
		breakMs += elapsed
	}
	return workMs, breakMs
}
