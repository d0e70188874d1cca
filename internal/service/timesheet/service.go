package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/google/uuid"
)

type TimesheetServiceImpl struct {
	repo       timesheet.DayRecordRepository
	clk        clock.Clock
	defaultLoc *time.Location
}

func NewTimesheetService(
	repo timesheet.DayRecordRepository,
	clk clock.Clock,
	defaultLoc *time.Location,
) timesheet.TimesheetService {
	return &TimesheetServiceImpl{
		repo:       repo,
		clk:        clk,
		defaultLoc: defaultLoc,
	}
}

// location resolves the identity's reference timezone, falling back to the
// configured default when the claim is absent or unparseable.
func (s *TimesheetServiceImpl) location(tz string) *time.Location {
	if tz == "" {
		return s.defaultLoc
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return s.defaultLoc
	}
	return loc
}

// Start implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) Start(ctx context.Context, userID string, tz string) (timesheet.DayResponse, error) {
	now := s.clk.Now().UTC()
	dateKey := timesheet.DateKeyFor(now, s.location(tz))

	rec, err := s.repo.GetByUserAndDate(ctx, userID, dateKey)
	if err != nil {
		if !errors.Is(err, timesheet.ErrDayRecordNotFound) {
			return timesheet.DayResponse{}, fmt.Errorf("failed to load day record: %w", err)
		}

		// First start of the day: create the record lazily.
		recID := uuid.Must(uuid.NewV7()).String()
		created, err := s.repo.Create(ctx, timesheet.DayRecord{
			ID:           recID,
			UserID:       userID,
			DateKey:      dateKey,
			Status:       timesheet.StatusWorking,
			FirstStartAt: &now,
			LastActionAt: &now,
		}, newDayAction(recID, timesheet.ActionStart, now, "started by user"))
		if err != nil {
			if errors.Is(err, timesheet.ErrConflictRetry) {
				// Another tab created today's record between our lookup
				// and the insert.
				return timesheet.DayResponse{}, timesheet.ErrConflictRetry
			}
			return timesheet.DayResponse{}, fmt.Errorf("failed to create day record: %w", err)
		}
		return liveResponse(created, now), nil
	}

	if err := applyTransition(&rec, timesheet.ActionStart, now); err != nil {
		return timesheet.DayResponse{}, err
	}

	updated, err := s.repo.UpdateVersioned(ctx, rec, newDayAction(rec.ID, timesheet.ActionStart, now, "restarted by user"))
	if err != nil {
		return timesheet.DayResponse{}, err
	}
	return liveResponse(updated, now), nil
}

// BreakStart implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) BreakStart(ctx context.Context, userID string, tz string) (timesheet.DayResponse, error) {
	return s.transition(ctx, userID, tz, timesheet.ActionBreak, "break started by user")
}

// BreakEnd implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) BreakEnd(ctx context.Context, userID string, tz string) (timesheet.DayResponse, error) {
	return s.transition(ctx, userID, tz, timesheet.ActionResume, "break ended by user")
}

// Stop implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) Stop(ctx context.Context, userID string, tz string) (timesheet.DayResponse, error) {
	return s.transition(ctx, userID, tz, timesheet.ActionStop, "stopped by user")
}

// transition loads today's record, applies one action against that fresh
// baseline and persists with the version check. A concurrent writer makes
// UpdateVersioned fail with ErrConflictRetry, which is surfaced unchanged so
// the client reloads and resubmits.
func (s *TimesheetServiceImpl) transition(ctx context.Context, userID string, tz string, action timesheet.Action, detail string) (timesheet.DayResponse, error) {
	now := s.clk.Now().UTC()
	dateKey := timesheet.DateKeyFor(now, s.location(tz))

	rec, err := s.repo.GetByUserAndDate(ctx, userID, dateKey)
	if err != nil {
		if errors.Is(err, timesheet.ErrDayRecordNotFound) {
			// No record today means no session yet: same as CLOSED.
			return timesheet.DayResponse{}, timesheet.ErrInvalidTransition
		}
		return timesheet.DayResponse{}, fmt.Errorf("failed to load day record: %w", err)
	}

	if err := applyTransition(&rec, action, now); err != nil {
		return timesheet.DayResponse{}, err
	}

	updated, err := s.repo.UpdateVersioned(ctx, rec, newDayAction(rec.ID, action, now, detail))
	if err != nil {
		return timesheet.DayResponse{}, err
	}
	return liveResponse(updated, now), nil
}

// GetToday implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) GetToday(ctx context.Context, userID string, tz string) (timesheet.TodayResponse, error) {
	now := s.clk.Now().UTC()
	dateKey := timesheet.DateKeyFor(now, s.location(tz))

	rec, err := s.repo.GetByUserAndDate(ctx, userID, dateKey)
	if err != nil {
		if errors.Is(err, timesheet.ErrDayRecordNotFound) {
			return timesheet.TodayResponse{NoSession: true}, nil
		}
		return timesheet.TodayResponse{}, fmt.Errorf("failed to load day record: %w", err)
	}

	actions, err := s.repo.ListActions(ctx, rec.ID)
	if err != nil {
		return timesheet.TodayResponse{}, fmt.Errorf("failed to load action log: %w", err)
	}

	actionResponses := make([]timesheet.ActionResponse, 0, len(actions))
	for _, a := range actions {
		actionResponses = append(actionResponses, timesheet.ActionResponse{
			Action:    string(a.Action),
			Detail:    a.Detail,
			Timestamp: a.CreatedAt.UTC().Format("2006-01-02 15:04:05.000"),
		})
	}

	day := liveResponse(rec, now)
	return timesheet.TodayResponse{
		Day:     &day,
		Actions: actionResponses,
	}, nil
}

// GetMonth implements timesheet.TimesheetService. Only stored totals are
// reported: every day but the current one is closed, and the current day is
// served by GetToday.
func (s *TimesheetServiceImpl) GetMonth(ctx context.Context, filter timesheet.MonthFilter) (timesheet.MonthResponse, error) {
	if err := filter.Validate(); err != nil {
		return timesheet.MonthResponse{}, err
	}

	firstOfMonth, _ := time.Parse("2006-01", filter.Month)
	fromKey := firstOfMonth.Format("2006-01-02")
	toKey := firstOfMonth.AddDate(0, 1, -1).Format("2006-01-02")

	records, err := s.repo.ListByUserAndRange(ctx, filter.UserID, fromKey, toKey)
	if err != nil {
		return timesheet.MonthResponse{}, fmt.Errorf("failed to list day records: %w", err)
	}

	resp := timesheet.MonthResponse{
		Month: filter.Month,
		Days:  make([]timesheet.DayResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Days = append(resp.Days, timesheet.NewDayResponse(rec, rec.AccruedWorkMs, rec.AccruedBreakMs))
		resp.TotalWorkMs += rec.AccruedWorkMs
		resp.TotalBreakMs += rec.AccruedBreakMs
	}
	return resp, nil
}

func newDayAction(dayRecordID string, action timesheet.Action, now time.Time, detail string) timesheet.DayAction {
	return timesheet.DayAction{
		ID:          uuid.Must(uuid.NewV7()).String(),
		DayRecordID: dayRecordID,
		Action:      action,
		Detail:      detail,
		CreatedAt:   now,
	}
}

func liveResponse(rec timesheet.DayRecord, now time.Time) timesheet.DayResponse {
	workMs, breakMs := timesheet.ComputeLive(rec, now)
	return timesheet.NewDayResponse(rec, workMs, breakMs)
}
