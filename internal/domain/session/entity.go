package session

import "time"

// Close reasons recorded when an audit entry is shut.
const (
	CloseReasonLogout      = "logout"
	CloseReasonInactive    = "inactive"
	CloseReasonForced      = "forced"
	CloseReasonSuperseded  = "superseded"
	CloseReasonDayRollover = "day_rollover"
)

// SessionAudit is one append-only login ledger entry. LogoutAt stays null
// while the session is open; LastSeenAt is the heartbeat watermark. At most
// one entry per user is open at a time, except for admins, who may hold
// concurrent sessions across devices.
type SessionAudit struct {
	ID              string
	UserID          string
	LoginAt         time.Time
	LogoutAt        *time.Time
	LastSeenAt      time.Time
	DurationMinutes *int
	CloseReason     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
