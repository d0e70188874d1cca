package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/session"
)

type SessionAuditStore struct {
	mu      sync.Mutex
	entries map[string]session.SessionAudit
}

func NewSessionAuditStore() *SessionAuditStore {
	return &SessionAuditStore{
		entries: make(map[string]session.SessionAudit),
	}
}

// Create implements session.SessionAuditRepository.
func (s *SessionAuditStore) Create(ctx context.Context, entry session.SessionAudit) (session.SessionAudit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.CreatedAt = entry.LoginAt
	entry.UpdatedAt = entry.LoginAt
	s.entries[entry.ID] = entry
	return entry, nil
}

// GetOpenByUser implements session.SessionAuditRepository.
func (s *SessionAuditStore) GetOpenByUser(ctx context.Context, userID string) (session.SessionAudit, error) {
	open, err := s.ListOpenByUser(ctx, userID)
	if err != nil {
		return session.SessionAudit{}, err
	}
	if len(open) == 0 {
		return session.SessionAudit{}, session.ErrNoOpenSession
	}
	return open[0], nil
}

// ListOpenByUser implements session.SessionAuditRepository.
func (s *SessionAuditStore) ListOpenByUser(ctx context.Context, userID string) ([]session.SessionAudit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var open []session.SessionAudit
	for _, entry := range s.entries {
		if entry.UserID == userID && entry.LogoutAt == nil {
			open = append(open, entry)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].LoginAt.After(open[j].LoginAt)
	})
	return open, nil
}

// Touch implements session.SessionAuditRepository.
func (s *SessionAuditStore) Touch(ctx context.Context, id string, lastSeenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || entry.LogoutAt != nil {
		return session.ErrSessionNotFound
	}
	entry.LastSeenAt = lastSeenAt
	entry.UpdatedAt = lastSeenAt
	s.entries[id] = entry
	return nil
}

// Close implements session.SessionAuditRepository.
func (s *SessionAuditStore) Close(ctx context.Context, id string, logoutAt time.Time, durationMinutes int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || entry.LogoutAt != nil {
		return session.ErrSessionNotFound
	}
	entry.LogoutAt = &logoutAt
	entry.DurationMinutes = &durationMinutes
	entry.CloseReason = &reason
	entry.UpdatedAt = logoutAt
	s.entries[id] = entry
	return nil
}

// ListInactiveOpen implements session.SessionAuditRepository.
func (s *SessionAuditStore) ListInactiveOpen(ctx context.Context, cutoff time.Time) ([]session.SessionAudit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []session.SessionAudit
	for _, entry := range s.entries {
		if entry.LogoutAt == nil && entry.LastSeenAt.Before(cutoff) {
			stale = append(stale, entry)
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		return stale[i].LastSeenAt.Before(stale[j].LastSeenAt)
	})
	return stale, nil
}

// ListOpenByUserBefore implements session.SessionAuditRepository.
func (s *SessionAuditStore) ListOpenByUserBefore(ctx context.Context, userID string, cutoff time.Time) ([]session.SessionAudit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var open []session.SessionAudit
	for _, entry := range s.entries {
		if entry.UserID == userID && entry.LogoutAt == nil && entry.LoginAt.Before(cutoff) {
			open = append(open, entry)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].LoginAt.Before(open[j].LoginAt)
	})
	return open, nil
}
