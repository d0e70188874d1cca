package timesheet

import (
	"context"
)

// DayRecordRepository defines data access for day records and their
// append-only action logs. Every mutation is conditional on the record
// version so that concurrent writers (tabs, devices, the reconciler)
// serialize through ErrConflictRetry instead of clobbering each other.
type DayRecordRepository interface {
	// Create inserts a new day record together with its first action log
	// line. Returns ErrConflictRetry if a record for (user, dateKey)
	// already exists: a concurrent first start won the insert and the
	// caller reloads.
	Create(ctx context.Context, rec DayRecord, action DayAction) (DayRecord, error)

	// GetByUserAndDate returns the record for (userID, dateKey), or
	// ErrDayRecordNotFound.
	GetByUserAndDate(ctx context.Context, userID string, dateKey string) (DayRecord, error)

	// UpdateVersioned persists rec if the stored version still equals
	// rec.Version, bumping it and appending one action log line in the
	// same transaction. Returns ErrConflictRetry on a stale version.
	UpdateVersioned(ctx context.Context, rec DayRecord, action DayAction) (DayRecord, error)

	// ListByUserAndRange returns records with fromKey <= dateKey <= toKey,
	// ordered by dateKey ascending.
	ListByUserAndRange(ctx context.Context, userID string, fromKey string, toKey string) ([]DayRecord, error)

	// ListOpenBefore returns all records still WORKING or BREAK whose
	// dateKey precedes todayKey. Used by the day-boundary sweep.
	ListOpenBefore(ctx context.Context, todayKey string) ([]DayRecord, error)

	// ListActions returns the record's action log, oldest first.
	ListActions(ctx context.Context, dayRecordID string) ([]DayAction, error)
}
