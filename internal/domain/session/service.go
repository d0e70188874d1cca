package session

import "context"

// SessionService defines business logic for the login ledger. Credential
// checking happens upstream; these operations only account for an already
// authenticated identity.
type SessionService interface {
	// RecordLogin opens a new audit entry. For non-admin roles an
	// existing open entry is closed first (reason "superseded") so at
	// most one stays open per user.
	RecordLogin(ctx context.Context, userID string, role string) (SessionResponse, error)

	// RecordHeartbeat renews the inactivity watermark of the open entry.
	RecordHeartbeat(ctx context.Context, userID string) (SessionResponse, error)

	// RecordLogout closes the open entry (explicit logout or
	// beacon-on-unload).
	RecordLogout(ctx context.Context, userID string) (SessionResponse, error)

	// ForceLogout closes every open entry of the target user on behalf of
	// an administrator.
	ForceLogout(ctx context.Context, targetUserID string, adminID string) ([]SessionResponse, error)

	// AutoCloseInactive closes sessions whose heartbeat is older than the
	// configured threshold and returns how many were closed.
	AutoCloseInactive(ctx context.Context) (int, error)
}
