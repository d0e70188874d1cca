package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/google/uuid"
)

// RoleAdmin may hold concurrent open sessions across devices; everyone else
// gets their previous session superseded on a new login.
const RoleAdmin = "admin"

type SessionServiceImpl struct {
	repo             session.SessionAuditRepository
	clk              clock.Clock
	heartbeatTimeout time.Duration
}

func NewSessionService(
	repo session.SessionAuditRepository,
	clk clock.Clock,
	heartbeatTimeout time.Duration,
) session.SessionService {
	return &SessionServiceImpl{
		repo:             repo,
		clk:              clk,
		heartbeatTimeout: heartbeatTimeout,
	}
}

// RecordLogin implements session.SessionService.
func (s *SessionServiceImpl) RecordLogin(ctx context.Context, userID string, role string) (session.SessionResponse, error) {
	now := s.clk.Now().UTC()

	if role != RoleAdmin {
		open, err := s.repo.ListOpenByUser(ctx, userID)
		if err != nil {
			return session.SessionResponse{}, fmt.Errorf("failed to list open sessions: %w", err)
		}
		for _, prev := range open {
			if err := s.closeEntry(ctx, prev, now, session.CloseReasonSuperseded); err != nil {
				return session.SessionResponse{}, fmt.Errorf("failed to supersede session %s: %w", prev.ID, err)
			}
		}
	}

	entry, err := s.repo.Create(ctx, session.SessionAudit{
		ID:         uuid.Must(uuid.NewV7()).String(),
		UserID:     userID,
		LoginAt:    now,
		LastSeenAt: now,
	})
	if err != nil {
		return session.SessionResponse{}, fmt.Errorf("failed to create session audit entry: %w", err)
	}
	return session.NewSessionResponse(entry), nil
}

// RecordHeartbeat implements session.SessionService.
func (s *SessionServiceImpl) RecordHeartbeat(ctx context.Context, userID string) (session.SessionResponse, error) {
	now := s.clk.Now().UTC()

	entry, err := s.repo.GetOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNoOpenSession) {
			return session.SessionResponse{}, session.ErrNoOpenSession
		}
		return session.SessionResponse{}, fmt.Errorf("failed to get open session: %w", err)
	}

	if err := s.repo.Touch(ctx, entry.ID, now); err != nil {
		return session.SessionResponse{}, fmt.Errorf("failed to renew heartbeat: %w", err)
	}

	entry.LastSeenAt = now
	return session.NewSessionResponse(entry), nil
}

// RecordLogout implements session.SessionService.
func (s *SessionServiceImpl) RecordLogout(ctx context.Context, userID string) (session.SessionResponse, error) {
	now := s.clk.Now().UTC()

	entry, err := s.repo.GetOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNoOpenSession) {
			return session.SessionResponse{}, session.ErrNoOpenSession
		}
		return session.SessionResponse{}, fmt.Errorf("failed to get open session: %w", err)
	}

	if err := s.closeEntry(ctx, entry, now, session.CloseReasonLogout); err != nil {
		return session.SessionResponse{}, fmt.Errorf("failed to close session: %w", err)
	}

	return s.closedResponse(entry, now, session.CloseReasonLogout), nil
}

// ForceLogout implements session.SessionService.
func (s *SessionServiceImpl) ForceLogout(ctx context.Context, targetUserID string, adminID string) ([]session.SessionResponse, error) {
	now := s.clk.Now().UTC()

	open, err := s.repo.ListOpenByUser(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	if len(open) == 0 {
		return nil, session.ErrNoOpenSession
	}

	responses := make([]session.SessionResponse, 0, len(open))
	for _, entry := range open {
		if err := s.closeEntry(ctx, entry, now, session.CloseReasonForced); err != nil {
			return nil, fmt.Errorf("failed to force-close session %s: %w", entry.ID, err)
		}
		responses = append(responses, s.closedResponse(entry, now, session.CloseReasonForced))
	}

	slog.Info("sessions force-closed",
		"target_user_id", targetUserID,
		"admin_id", adminID,
		"count", len(responses))
	return responses, nil
}

// AutoCloseInactive implements session.SessionService. A failed close is
// logged and skipped; the sweep continues with the remaining entries.
func (s *SessionServiceImpl) AutoCloseInactive(ctx context.Context) (int, error) {
	now := s.clk.Now().UTC()
	cutoff := now.Add(-s.heartbeatTimeout)

	stale, err := s.repo.ListInactiveOpen(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list inactive sessions: %w", err)
	}

	closed := 0
	for _, entry := range stale {
		if err := s.closeEntry(ctx, entry, now, session.CloseReasonInactive); err != nil {
			slog.Error("failed to close inactive session",
				"session_id", entry.ID,
				"user_id", entry.UserID,
				"error", err)
			continue
		}
		closed++
	}
	return closed, nil
}

func (s *SessionServiceImpl) closeEntry(ctx context.Context, entry session.SessionAudit, logoutAt time.Time, reason string) error {
	return s.repo.Close(ctx, entry.ID, logoutAt, durationMinutes(entry.LoginAt, logoutAt), reason)
}

func (s *SessionServiceImpl) closedResponse(entry session.SessionAudit, logoutAt time.Time, reason string) session.SessionResponse {
	mins := durationMinutes(entry.LoginAt, logoutAt)
	entry.LogoutAt = &logoutAt
	entry.DurationMinutes = &mins
	entry.CloseReason = &reason
	return session.NewSessionResponse(entry)
}

func durationMinutes(loginAt, logoutAt time.Time) int {
	mins := int(logoutAt.Sub(loginAt).Minutes())
	if mins < 0 {
		mins = 0
	}
	return mins
}
