package session

import (
	"context"
	"time"
)

// SessionAuditRepository defines data access for the login ledger. Entries
// are append-only: closing sets logout fields exactly once, nothing is ever
// deleted.
type SessionAuditRepository interface {
	// Create appends a new open entry.
	Create(ctx context.Context, entry SessionAudit) (SessionAudit, error)

	// GetOpenByUser returns the most recent open entry for the user, or
	// ErrNoOpenSession.
	GetOpenByUser(ctx context.Context, userID string) (SessionAudit, error)

	// ListOpenByUser returns every open entry for the user, newest first.
	ListOpenByUser(ctx context.Context, userID string) ([]SessionAudit, error)

	// Touch updates the heartbeat watermark of an open entry.
	Touch(ctx context.Context, id string, lastSeenAt time.Time) error

	// Close sets logoutAt, durationMinutes and the close reason. Closing
	// an already closed entry returns ErrSessionNotFound.
	Close(ctx context.Context, id string, logoutAt time.Time, durationMinutes int, reason string) error

	// ListInactiveOpen returns open entries whose lastSeenAt is older
	// than the cutoff.
	ListInactiveOpen(ctx context.Context, cutoff time.Time) ([]SessionAudit, error)

	// ListOpenByUserBefore returns open entries for the user whose login
	// predates the cutoff. Used by the day-boundary sweep.
	ListOpenByUserBefore(ctx context.Context, userID string, cutoff time.Time) ([]SessionAudit, error)
}
