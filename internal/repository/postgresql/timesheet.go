package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type dayRecordRepository struct {
	db *database.DB
}

const dayRecordColumns = `
	id, user_id, date_key, status,
	first_start_at, last_action_at, last_stop_at,
	accrued_work_ms, accrued_break_ms, version,
	created_at, updated_at`

func scanDayRecord(row pgx.Row) (timesheet.DayRecord, error) {
	var rec timesheet.DayRecord
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.DateKey, &rec.Status,
		&rec.FirstStartAt, &rec.LastActionAt, &rec.LastStopAt,
		&rec.AccruedWorkMs, &rec.AccruedBreakMs, &rec.Version,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Create implements timesheet.DayRecordRepository. The record and its first
// action log line are written in one transaction so the log never misses a
// transition.
func (r *dayRecordRepository) Create(ctx context.Context, rec timesheet.DayRecord, action timesheet.DayAction) (timesheet.DayRecord, error) {
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO day_records (
				id, user_id, date_key, status,
				first_start_at, last_action_at, last_stop_at,
				accrued_work_ms, accrued_break_ms, version
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, 1
			) RETURNING version, created_at, updated_at
		`
		if err := tx.QueryRow(ctx, query,
			rec.ID,
			rec.UserID,
			rec.DateKey,
			rec.Status,
			rec.FirstStartAt,
			rec.LastActionAt,
			rec.LastStopAt,
			rec.AccruedWorkMs,
			rec.AccruedBreakMs,
		).Scan(&rec.Version, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert day record: %w", err)
		}

		return appendAction(ctx, tx, action)
	})
	if err != nil {
		// Check for a concurrent first start (unique constraint violation)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return timesheet.DayRecord{}, timesheet.ErrConflictRetry
		}
		return timesheet.DayRecord{}, err
	}
	return rec, nil
}

// GetByUserAndDate implements timesheet.DayRecordRepository.
func (r *dayRecordRepository) GetByUserAndDate(ctx context.Context, userID string, dateKey string) (timesheet.DayRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + dayRecordColumns + `
		FROM day_records
		WHERE user_id = $1
		  AND date_key = $2
	`

	rec, err := scanDayRecord(q.QueryRow(ctx, query, userID, dateKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.DayRecord{}, timesheet.ErrDayRecordNotFound
		}
		return timesheet.DayRecord{}, fmt.Errorf("failed to get day record: %w", err)
	}
	return rec, nil
}

// UpdateVersioned implements timesheet.DayRecordRepository. The UPDATE is
// conditional on the version the caller loaded; a concurrent writer bumps it
// first and this call reports ErrConflictRetry without touching the row.
func (r *dayRecordRepository) UpdateVersioned(ctx context.Context, rec timesheet.DayRecord, action timesheet.DayAction) (timesheet.DayRecord, error) {
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE day_records
			SET status = $1,
			    first_start_at = $2,
			    last_action_at = $3,
			    last_stop_at = $4,
			    accrued_work_ms = $5,
			    accrued_break_ms = $6,
			    version = version + 1,
			    updated_at = NOW()
			WHERE id = $7
			  AND version = $8
			RETURNING version, updated_at
		`
		err := tx.QueryRow(ctx, query,
			rec.Status,
			rec.FirstStartAt,
			rec.LastActionAt,
			rec.LastStopAt,
			rec.AccruedWorkMs,
			rec.AccruedBreakMs,
			rec.ID,
			rec.Version,
		).Scan(&rec.Version, &rec.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				var exists bool
				if exErr := tx.QueryRow(ctx,
					`SELECT EXISTS (SELECT 1 FROM day_records WHERE id = $1)`,
					rec.ID,
				).Scan(&exists); exErr != nil {
					return fmt.Errorf("failed to check day record existence: %w", exErr)
				}
				if exists {
					return timesheet.ErrConflictRetry
				}
				return timesheet.ErrDayRecordNotFound
			}
			return fmt.Errorf("failed to update day record: %w", err)
		}

		return appendAction(ctx, tx, action)
	})
	if err != nil {
		return timesheet.DayRecord{}, err
	}
	return rec, nil
}

// ListByUserAndRange implements timesheet.DayRecordRepository.
func (r *dayRecordRepository) ListByUserAndRange(ctx context.Context, userID string, fromKey string, toKey string) ([]timesheet.DayRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + dayRecordColumns + `
		FROM day_records
		WHERE user_id = $1
		  AND date_key >= $2
		  AND date_key <= $3
		ORDER BY date_key ASC
	`

	rows, err := q.Query(ctx, query, userID, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query day records: %w", err)
	}
	defer rows.Close()

	var records []timesheet.DayRecord
	for rows.Next() {
		rec, err := scanDayRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan day record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListOpenBefore implements timesheet.DayRecordRepository.
func (r *dayRecordRepository) ListOpenBefore(ctx context.Context, todayKey string) ([]timesheet.DayRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + dayRecordColumns + `
		FROM day_records
		WHERE status <> $1
		  AND date_key < $2
		ORDER BY date_key ASC
	`

	rows, err := q.Query(ctx, query, timesheet.StatusClosed, todayKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale open day records: %w", err)
	}
	defer rows.Close()

	var records []timesheet.DayRecord
	for rows.Next() {
		rec, err := scanDayRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan day record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListActions implements timesheet.DayRecordRepository.
func (r *dayRecordRepository) ListActions(ctx context.Context, dayRecordID string) ([]timesheet.DayAction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, day_record_id, action, detail, created_at
		FROM day_record_actions
		WHERE day_record_id = $1
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, dayRecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query day record actions: %w", err)
	}
	defer rows.Close()

	var actions []timesheet.DayAction
	for rows.Next() {
		var a timesheet.DayAction
		if err := rows.Scan(&a.ID, &a.DayRecordID, &a.Action, &a.Detail, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan day record action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func appendAction(ctx context.Context, tx pgx.Tx, action timesheet.DayAction) error {
	query := `
		INSERT INTO day_record_actions (id, day_record_id, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, query,
		action.ID,
		action.DayRecordID,
		action.Action,
		action.Detail,
		action.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to append day record action: %w", err)
	}
	return nil
}

func NewDayRecordRepository(db *database.DB) timesheet.DayRecordRepository {
	return &dayRecordRepository{db: db}
}
