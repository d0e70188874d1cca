package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/presence-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "9f8e7d6c-5b4a-4321-8765-43210fedcba9"

type fixture struct {
	svc      *Service
	dayStore *memory.DayRecordStore
	sessions *memory.SessionAuditStore
	clk      *clock.Fake
}

func newFixture(now time.Time) *fixture {
	dayStore := memory.NewDayRecordStore()
	sessions := memory.NewSessionAuditStore()
	clk := clock.NewFake(now)
	return &fixture{
		svc:      NewService(dayStore, sessions, clk, time.UTC),
		dayStore: dayStore,
		sessions: sessions,
		clk:      clk,
	}
}

func (f *fixture) seedDayRecord(t *testing.T, rec timesheet.DayRecord) timesheet.DayRecord {
	t.Helper()
	created, err := f.dayStore.Create(context.Background(), rec, timesheet.DayAction{
		ID:          "seed-" + rec.ID,
		DayRecordID: rec.ID,
		Action:      timesheet.ActionStart,
		CreatedAt:   f.clk.Now(),
	})
	require.NoError(t, err)
	return created
}

func TestReconcileClosesRecordAtDayBoundary(t *testing.T) {
	ctx := context.Background()
	// The user started at 23:58 and never stopped; the sweep runs the next
	// morning.
	lastAction := time.Date(2026, 3, 1, 23, 58, 0, 0, time.UTC)
	f := newFixture(time.Date(2026, 3, 2, 0, 30, 0, 0, time.UTC))
	f.seedDayRecord(t, timesheet.DayRecord{
		ID:           "rec-1",
		UserID:       testUserID,
		DateKey:      "2026-03-01",
		Status:       timesheet.StatusWorking,
		FirstStartAt: &lastAction,
		LastActionAt: &lastAction,
	})

	closed, err := f.svc.ReconcileNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	rec, err := f.dayStore.GetByUserAndDate(ctx, testUserID, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusClosed, rec.Status)
	// Only the stretch up to 23:59:59.999 is credited, not the half hour
	// past midnight.
	assert.Equal(t, int64(119_999), rec.AccruedWorkMs)
	require.NotNil(t, rec.LastStopAt)
	assert.Equal(t, time.Date(2026, 3, 1, 23, 59, 59, 999_000_000, time.UTC), rec.LastStopAt.UTC())

	actions, err := f.dayStore.ListActions(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, timesheet.ActionStop, actions[1].Action)
}

func TestReconcileCreditsBreakBucketForBreakRecords(t *testing.T) {
	ctx := context.Background()
	lastAction := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	f := newFixture(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC))
	f.seedDayRecord(t, timesheet.DayRecord{
		ID:            "rec-1",
		UserID:        testUserID,
		DateKey:       "2026-03-01",
		Status:        timesheet.StatusBreak,
		LastActionAt:  &lastAction,
		AccruedWorkMs: 3_600_000,
	})

	_, err := f.svc.ReconcileNow(ctx)
	require.NoError(t, err)

	rec, err := f.dayStore.GetByUserAndDate(ctx, testUserID, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, int64(3_600_000), rec.AccruedWorkMs)
	assert.Equal(t, int64(3_599_999), rec.AccruedBreakMs)
}

func TestReconcileLeavesCurrentDayOpen(t *testing.T) {
	ctx := context.Background()
	lastAction := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	f.seedDayRecord(t, timesheet.DayRecord{
		ID:           "rec-1",
		UserID:       testUserID,
		DateKey:      "2026-03-02",
		Status:       timesheet.StatusWorking,
		LastActionAt: &lastAction,
	})

	closed, err := f.svc.ReconcileNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	rec, err := f.dayStore.GetByUserAndDate(ctx, testUserID, "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusWorking, rec.Status)
}

func TestReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	lastAction := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	f := newFixture(time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC))
	f.seedDayRecord(t, timesheet.DayRecord{
		ID:           "rec-1",
		UserID:       testUserID,
		DateKey:      "2026-03-01",
		Status:       timesheet.StatusWorking,
		LastActionAt: &lastAction,
	})

	closed, err := f.svc.ReconcileNow(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	closed, err = f.svc.ReconcileNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}

func TestReconcileClosesStraddlingSessions(t *testing.T) {
	ctx := context.Background()
	lastAction := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	loginAt := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	f := newFixture(time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC))
	f.seedDayRecord(t, timesheet.DayRecord{
		ID:           "rec-1",
		UserID:       testUserID,
		DateKey:      "2026-03-01",
		Status:       timesheet.StatusWorking,
		LastActionAt: &lastAction,
	})
	_, err := f.sessions.Create(ctx, session.SessionAudit{
		ID:         "sess-1",
		UserID:     testUserID,
		LoginAt:    loginAt,
		LastSeenAt: lastAction,
	})
	require.NoError(t, err)

	_, err = f.svc.ReconcileNow(ctx)
	require.NoError(t, err)

	open, err := f.sessions.ListOpenByUser(ctx, testUserID)
	require.NoError(t, err)
	assert.Empty(t, open)
}

// failOnUpdate makes versioned updates fail for one record ID, simulating a
// lost version race during the sweep.
type failOnUpdate struct {
	timesheet.DayRecordRepository
	failID string
}

func (r *failOnUpdate) UpdateVersioned(ctx context.Context, rec timesheet.DayRecord, action timesheet.DayAction) (timesheet.DayRecord, error) {
	if rec.ID == r.failID {
		return timesheet.DayRecord{}, timesheet.ErrConflictRetry
	}
	return r.DayRecordRepository.UpdateVersioned(ctx, rec, action)
}

func TestReconcileSkipsFailingRecordAndContinues(t *testing.T) {
	ctx := context.Background()
	lastAction := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	f := newFixture(time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC))
	f.seedDayRecord(t, timesheet.DayRecord{
		ID:           "rec-bad",
		UserID:       "0c0c0c0c-0c0c-4c0c-8c0c-0c0c0c0c0c0c",
		DateKey:      "2026-03-01",
		Status:       timesheet.StatusWorking,
		LastActionAt: &lastAction,
	})
	f.seedDayRecord(t, timesheet.DayRecord{
		ID:           "rec-good",
		UserID:       testUserID,
		DateKey:      "2026-03-01",
		Status:       timesheet.StatusWorking,
		LastActionAt: &lastAction,
	})

	svc := NewService(&failOnUpdate{DayRecordRepository: f.dayStore, failID: "rec-bad"}, f.sessions, f.clk, time.UTC)

	closed, err := svc.ReconcileNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	good, err := f.dayStore.GetByUserAndDate(ctx, testUserID, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusClosed, good.Status)
}

func TestNewRecordCreatableAfterRollover(t *testing.T) {
	ctx := context.Background()
	lastAction := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	f := newFixture(time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC))
	f.seedDayRecord(t, timesheet.DayRecord{
		ID:           "rec-1",
		UserID:       testUserID,
		DateKey:      "2026-03-01",
		Status:       timesheet.StatusWorking,
		LastActionAt: &lastAction,
	})

	_, err := f.svc.ReconcileNow(ctx)
	require.NoError(t, err)

	// Yesterday's closed record does not block today's.
	now := f.clk.Now()
	_, err = f.dayStore.Create(ctx, timesheet.DayRecord{
		ID:           "rec-2",
		UserID:       testUserID,
		DateKey:      "2026-03-02",
		Status:       timesheet.StatusWorking,
		FirstStartAt: &now,
		LastActionAt: &now,
	}, timesheet.DayAction{
		ID:          "act-2",
		DayRecordID: "rec-2",
		Action:      timesheet.ActionStart,
		CreatedAt:   now,
	})
	assert.NoError(t, err)
}
