package session

import "time"

// ========================================
// SESSION AUDIT DTOs
// ========================================

type SessionResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	LoginAt         string  `json:"login_at"`
	LogoutAt        *string `json:"logout_at"`
	LastSeenAt      string  `json:"last_seen_at"`
	DurationMinutes *int    `json:"duration_minutes"`
	CloseReason     *string `json:"close_reason"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func NewSessionResponse(entry SessionAudit) SessionResponse {
	return SessionResponse{
		ID:              entry.ID,
		UserID:          entry.UserID,
		LoginAt:         formatTime(entry.LoginAt),
		LogoutAt:        formatTimePtr(entry.LogoutAt),
		LastSeenAt:      formatTime(entry.LastSeenAt),
		DurationMinutes: entry.DurationMinutes,
		CloseReason:     entry.CloseReason,
	}
}
