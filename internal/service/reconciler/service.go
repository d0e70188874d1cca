package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/google/uuid"
)

// Service force-closes day records left open past their calendar day,
// crediting the remaining interval to the active bucket up to 23:59:59.999
// local, and closes the matching login sessions so day accounting and
// session accounting never diverge at the boundary.
type Service struct {
	dayRepo     timesheet.DayRecordRepository
	sessionRepo session.SessionAuditRepository
	clk         clock.Clock
	loc         *time.Location
}

func NewService(
	dayRepo timesheet.DayRecordRepository,
	sessionRepo session.SessionAuditRepository,
	clk clock.Clock,
	loc *time.Location,
) *Service {
	return &Service{
		dayRepo:     dayRepo,
		sessionRepo: sessionRepo,
		clk:         clk,
		loc:         loc,
	}
}

// ReconcileNow runs one sweep and returns how many day records were closed.
// A single record's failure is logged and skipped; the sweep always visits
// every candidate. After a sweep no record remains open for a day that is
// not the current day, except records whose close lost a version race --
// those are picked up by the next sweep.
func (s *Service) ReconcileNow(ctx context.Context) (int, error) {
	now := s.clk.Now().UTC()
	todayKey := timesheet.DateKeyFor(now, s.loc)

	open, err := s.dayRepo.ListOpenBefore(ctx, todayKey)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale open day records: %w", err)
	}

	closed := 0
	for _, rec := range open {
		if err := s.closeRecord(ctx, rec, now); err != nil {
			slog.Error("failed to reconcile day record",
				"day_record_id", rec.ID,
				"user_id", rec.UserID,
				"date_key", rec.DateKey,
				"error", err)
			continue
		}
		closed++
	}

	if closed > 0 {
		slog.Info("reconciled stale day records", "count", closed)
	}
	return closed, nil
}

func (s *Service) closeRecord(ctx context.Context, rec timesheet.DayRecord, now time.Time) error {
	endOfDay, err := timesheet.EndOfDay(rec.DateKey, s.loc)
	if err != nil {
		return fmt.Errorf("invalid date key %q: %w", rec.DateKey, err)
	}
	endOfDay = endOfDay.UTC()

	// Never credit time beyond the record's own calendar day.
	ref := now
	if endOfDay.Before(ref) {
		ref = endOfDay
	}

	rec.AccruedWorkMs, rec.AccruedBreakMs = timesheet.ComputeLive(rec, ref)
	rec.Status = timesheet.StatusClosed
	rec.LastStopAt = &endOfDay
	rec.LastActionAt = &endOfDay

	_, err = s.dayRepo.UpdateVersioned(ctx, rec, timesheet.DayAction{
		ID:          uuid.Must(uuid.NewV7()).String(),
		DayRecordID: rec.ID,
		Action:      timesheet.ActionStop,
		Detail:      "auto-closed by reconciler at end of day",
		CreatedAt:   now,
	})
	if err != nil {
		return err
	}

	// Close the user's login sessions that straddle the boundary with the
	// same end-of-day instant.
	s.closeSessions(ctx, rec.UserID, endOfDay)
	return nil
}

func (s *Service) closeSessions(ctx context.Context, userID string, endOfDay time.Time) {
	stale, err := s.sessionRepo.ListOpenByUserBefore(ctx, userID, endOfDay)
	if err != nil {
		slog.Error("failed to list sessions for day rollover",
			"user_id", userID,
			"error", err)
		return
	}

	for _, entry := range stale {
		mins := int(endOfDay.Sub(entry.LoginAt).Minutes())
		if mins < 0 {
			mins = 0
		}
		if err := s.sessionRepo.Close(ctx, entry.ID, endOfDay, mins, session.CloseReasonDayRollover); err != nil {
			slog.Error("failed to close session at day rollover",
				"session_id", entry.ID,
				"user_id", userID,
				"error", err)
		}
	}
}
