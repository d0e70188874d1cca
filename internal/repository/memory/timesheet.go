// Package memory provides in-process implementations of the repository
// interfaces with the same optimistic-concurrency contract as the
// postgresql package. Used by unit tests and local experimentation.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/timesheet"
)

type DayRecordStore struct {
	mu         sync.Mutex
	records    map[string]timesheet.DayRecord
	byUserDate map[string]string
	actions    map[string][]timesheet.DayAction
}

func NewDayRecordStore() *DayRecordStore {
	return &DayRecordStore{
		records:    make(map[string]timesheet.DayRecord),
		byUserDate: make(map[string]string),
		actions:    make(map[string][]timesheet.DayAction),
	}
}

func userDateKey(userID, dateKey string) string {
	return userID + "|" + dateKey
}

// Create implements timesheet.DayRecordRepository.
func (s *DayRecordStore) Create(ctx context.Context, rec timesheet.DayRecord, action timesheet.DayAction) (timesheet.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userDateKey(rec.UserID, rec.DateKey)
	if _, exists := s.byUserDate[key]; exists {
		// A concurrent first start won the insert; the loser retries.
		return timesheet.DayRecord{}, timesheet.ErrConflictRetry
	}

	rec.Version = 1
	rec.CreatedAt = action.CreatedAt
	rec.UpdatedAt = action.CreatedAt
	s.records[rec.ID] = rec
	s.byUserDate[key] = rec.ID
	s.actions[rec.ID] = append(s.actions[rec.ID], action)
	return rec, nil
}

// GetByUserAndDate implements timesheet.DayRecordRepository.
func (s *DayRecordStore) GetByUserAndDate(ctx context.Context, userID string, dateKey string) (timesheet.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUserDate[userDateKey(userID, dateKey)]
	if !ok {
		return timesheet.DayRecord{}, timesheet.ErrDayRecordNotFound
	}
	return s.records[id], nil
}

// UpdateVersioned implements timesheet.DayRecordRepository.
func (s *DayRecordStore) UpdateVersioned(ctx context.Context, rec timesheet.DayRecord, action timesheet.DayAction) (timesheet.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.records[rec.ID]
	if !ok {
		return timesheet.DayRecord{}, timesheet.ErrDayRecordNotFound
	}
	if stored.Version != rec.Version {
		return timesheet.DayRecord{}, timesheet.ErrConflictRetry
	}

	rec.Version++
	rec.CreatedAt = stored.CreatedAt
	rec.UpdatedAt = action.CreatedAt
	s.records[rec.ID] = rec
	s.actions[rec.ID] = append(s.actions[rec.ID], action)
	return rec, nil
}

// ListByUserAndRange implements timesheet.DayRecordRepository.
func (s *DayRecordStore) ListByUserAndRange(ctx context.Context, userID string, fromKey string, toKey string) ([]timesheet.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []timesheet.DayRecord
	for _, rec := range s.records {
		if rec.UserID == userID && rec.DateKey >= fromKey && rec.DateKey <= toKey {
			records = append(records, rec)
		}
	}
	sortByDateKey(records)
	return records, nil
}

// ListOpenBefore implements timesheet.DayRecordRepository.
func (s *DayRecordStore) ListOpenBefore(ctx context.Context, todayKey string) ([]timesheet.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []timesheet.DayRecord
	for _, rec := range s.records {
		if rec.Status != timesheet.StatusClosed && rec.DateKey < todayKey {
			records = append(records, rec)
		}
	}
	sortByDateKey(records)
	return records, nil
}

// ListActions implements timesheet.DayRecordRepository.
func (s *DayRecordStore) ListActions(ctx context.Context, dayRecordID string) ([]timesheet.DayAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actions := make([]timesheet.DayAction, len(s.actions[dayRecordID]))
	copy(actions, s.actions[dayRecordID])
	return actions, nil
}

// sortByDateKey orders records by dateKey ascending; the YYYY-MM-DD format
// makes lexicographic order chronological.
func sortByDateKey(records []timesheet.DayRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].DateKey < records[j].DateKey
	})
}
