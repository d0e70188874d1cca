package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type sessionAuditRepository struct {
	db *database.DB
}

const sessionAuditColumns = `
	id, user_id, login_at, logout_at, last_seen_at,
	duration_minutes, close_reason, created_at, updated_at`

func scanSessionAudit(row pgx.Row) (session.SessionAudit, error) {
	var entry session.SessionAudit
	err := row.Scan(
		&entry.ID, &entry.UserID, &entry.LoginAt, &entry.LogoutAt, &entry.LastSeenAt,
		&entry.DurationMinutes, &entry.CloseReason, &entry.CreatedAt, &entry.UpdatedAt,
	)
	return entry, err
}

// Create implements session.SessionAuditRepository.
func (r *sessionAuditRepository) Create(ctx context.Context, entry session.SessionAudit) (session.SessionAudit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO session_audits (id, user_id, login_at, last_seen_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		entry.ID,
		entry.UserID,
		entry.LoginAt,
		entry.LastSeenAt,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return session.SessionAudit{}, fmt.Errorf("failed to create session audit entry: %w", err)
	}
	return entry, nil
}

// GetOpenByUser implements session.SessionAuditRepository.
func (r *sessionAuditRepository) GetOpenByUser(ctx context.Context, userID string) (session.SessionAudit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + sessionAuditColumns + `
		FROM session_audits
		WHERE user_id = $1
		  AND logout_at IS NULL
		ORDER BY login_at DESC
		LIMIT 1
	`

	entry, err := scanSessionAudit(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.SessionAudit{}, session.ErrNoOpenSession
		}
		return session.SessionAudit{}, fmt.Errorf("failed to get open session: %w", err)
	}
	return entry, nil
}

// ListOpenByUser implements session.SessionAuditRepository.
func (r *sessionAuditRepository) ListOpenByUser(ctx context.Context, userID string) ([]session.SessionAudit, error) {
	query := `
		SELECT` + sessionAuditColumns + `
		FROM session_audits
		WHERE user_id = $1
		  AND logout_at IS NULL
		ORDER BY login_at DESC
	`
	return r.list(ctx, query, userID)
}

// Touch implements session.SessionAuditRepository.
func (r *sessionAuditRepository) Touch(ctx context.Context, id string, lastSeenAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE session_audits
		SET last_seen_at = $1, updated_at = NOW()
		WHERE id = $2
		  AND logout_at IS NULL
	`

	tag, err := q.Exec(ctx, query, lastSeenAt, id)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// Close implements session.SessionAuditRepository. The logout_at IS NULL
// guard keeps closes idempotent across racing sweeps: the second close
// affects no rows.
func (r *sessionAuditRepository) Close(ctx context.Context, id string, logoutAt time.Time, durationMinutes int, reason string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE session_audits
		SET logout_at = $1,
		    duration_minutes = $2,
		    close_reason = $3,
		    updated_at = NOW()
		WHERE id = $4
		  AND logout_at IS NULL
	`

	tag, err := q.Exec(ctx, query, logoutAt, durationMinutes, reason, id)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// ListInactiveOpen implements session.SessionAuditRepository.
func (r *sessionAuditRepository) ListInactiveOpen(ctx context.Context, cutoff time.Time) ([]session.SessionAudit, error) {
	query := `
		SELECT` + sessionAuditColumns + `
		FROM session_audits
		WHERE logout_at IS NULL
		  AND last_seen_at < $1
		ORDER BY last_seen_at ASC
	`
	return r.list(ctx, query, cutoff)
}

// ListOpenByUserBefore implements session.SessionAuditRepository.
func (r *sessionAuditRepository) ListOpenByUserBefore(ctx context.Context, userID string, cutoff time.Time) ([]session.SessionAudit, error) {
	query := `
		SELECT` + sessionAuditColumns + `
		FROM session_audits
		WHERE user_id = $1
		  AND logout_at IS NULL
		  AND login_at < $2
		ORDER BY login_at ASC
	`
	return r.list(ctx, query, userID, cutoff)
}

func (r *sessionAuditRepository) list(ctx context.Context, query string, args ...interface{}) ([]session.SessionAudit, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query session audits: %w", err)
	}
	defer rows.Close()

	var entries []session.SessionAudit
	for rows.Next() {
		entry, err := scanSessionAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func NewSessionAuditRepository(db *database.DB) session.SessionAuditRepository {
	return &sessionAuditRepository{db: db}
}
