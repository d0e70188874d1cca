package session

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/presence-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "7d4f9c3a-0a1b-4c2d-9e8f-abcdef012345"
	testAdminID = "1b2c3d4e-5f60-4789-9abc-def012345678"
)

func newTestService(start time.Time, heartbeatTimeout time.Duration) (session.SessionService, *memory.SessionAuditStore, *clock.Fake) {
	store := memory.NewSessionAuditStore()
	clk := clock.NewFake(start)
	svc := NewSessionService(store, clk, heartbeatTimeout)
	return svc, store, clk
}

func TestRecordLoginOpensEntry(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 2*time.Minute)

	resp, err := svc.RecordLogin(ctx, testUserID, "member")
	require.NoError(t, err)

	assert.Equal(t, testUserID, resp.UserID)
	assert.True(t, validator.IsValidUUID(resp.ID))
	assert.Nil(t, resp.LogoutAt)
	assert.Equal(t, resp.LoginAt, resp.LastSeenAt)

	open, err := store.ListOpenByUser(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestSecondLoginSupersedesPrevious(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestService(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 2*time.Minute)

	first, err := svc.RecordLogin(ctx, testUserID, "member")
	require.NoError(t, err)

	clk.Advance(45 * time.Minute)
	second, err := svc.RecordLogin(ctx, testUserID, "member")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	open, err := store.ListOpenByUser(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)

	// Heartbeats now land on the new session only.
	beat, err := svc.RecordHeartbeat(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, beat.ID)
}

func TestAdminMayHoldConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestService(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 2*time.Minute)

	_, err := svc.RecordLogin(ctx, testAdminID, RoleAdmin)
	require.NoError(t, err)
	clk.Advance(10 * time.Minute)
	_, err = svc.RecordLogin(ctx, testAdminID, RoleAdmin)
	require.NoError(t, err)

	open, err := store.ListOpenByUser(ctx, testAdminID)
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestHeartbeatRenewsLastSeen(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc, _, clk := newTestService(start, 2*time.Minute)

	login, err := svc.RecordLogin(ctx, testUserID, "member")
	require.NoError(t, err)

	clk.Advance(90 * time.Second)
	beat, err := svc.RecordHeartbeat(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, login.ID, beat.ID)
	assert.NotEqual(t, login.LastSeenAt, beat.LastSeenAt)

	// A renewed session survives a sweep that would otherwise close it.
	clk.Advance(90 * time.Second)
	closed, err := svc.AutoCloseInactive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}

func TestHeartbeatWithoutOpenSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 2*time.Minute)

	_, err := svc.RecordHeartbeat(ctx, testUserID)
	assert.ErrorIs(t, err, session.ErrNoOpenSession)
}

func TestRecordLogoutClosesWithDuration(t *testing.T) {
	ctx := context.Background()
	svc, _, clk := newTestService(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 2*time.Minute)

	_, err := svc.RecordLogin(ctx, testUserID, "member")
	require.NoError(t, err)

	clk.Advance(95 * time.Minute)
	resp, err := svc.RecordLogout(ctx, testUserID)
	require.NoError(t, err)

	require.NotNil(t, resp.LogoutAt)
	require.NotNil(t, resp.DurationMinutes)
	assert.Equal(t, 95, *resp.DurationMinutes)
	require.NotNil(t, resp.CloseReason)
	assert.Equal(t, session.CloseReasonLogout, *resp.CloseReason)

	_, err = svc.RecordLogout(ctx, testUserID)
	assert.ErrorIs(t, err, session.ErrNoOpenSession)
}

func TestForceLogoutClosesAllOpenSessions(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestService(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 2*time.Minute)

	_, err := svc.RecordLogin(ctx, testAdminID, RoleAdmin)
	require.NoError(t, err)
	clk.Advance(5 * time.Minute)
	_, err = svc.RecordLogin(ctx, testAdminID, RoleAdmin)
	require.NoError(t, err)

	clk.Advance(5 * time.Minute)
	responses, err := svc.ForceLogout(ctx, testAdminID, testUserID)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	for _, resp := range responses {
		require.NotNil(t, resp.CloseReason)
		assert.Equal(t, session.CloseReasonForced, *resp.CloseReason)
	}

	open, err := store.ListOpenByUser(ctx, testAdminID)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestForceLogoutWithNoOpenSessions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 2*time.Minute)

	_, err := svc.ForceLogout(ctx, testUserID, testAdminID)
	assert.ErrorIs(t, err, session.ErrNoOpenSession)
}

func TestAutoCloseInactiveClosesOnlyStaleSessions(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestService(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 2*time.Minute)

	_, err := svc.RecordLogin(ctx, testUserID, "member")
	require.NoError(t, err)

	clk.Advance(3 * time.Minute)
	fresh, err := svc.RecordLogin(ctx, testAdminID, RoleAdmin)
	require.NoError(t, err)

	closed, err := svc.AutoCloseInactive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	openStale, err := store.ListOpenByUser(ctx, testUserID)
	require.NoError(t, err)
	assert.Empty(t, openStale)

	openFresh, err := store.ListOpenByUser(ctx, testAdminID)
	require.NoError(t, err)
	require.Len(t, openFresh, 1)
	assert.Equal(t, fresh.ID, openFresh[0].ID)
}

func TestAutoCloseInactiveRecordsReason(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestService(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 2*time.Minute)

	_, err := svc.RecordLogin(ctx, testUserID, "member")
	require.NoError(t, err)

	clk.Advance(10 * time.Minute)
	closed, err := svc.AutoCloseInactive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	// Re-running the sweep is a no-op.
	closed, err = svc.AutoCloseInactive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	entries, err := store.ListOpenByUserBefore(ctx, testUserID, clk.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
