package record

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps records in memory behind a single mutex. Used for dev
// mode and tests; the lock gives the same per-student serialization the
// Postgres store gets from its partial unique index.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	byID    map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

func (s *MemoryStore) Insert(_ context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[rec.RecordID]; ok {
		return Record{}, ErrDuplicateRecordID
	}
	for i := range s.records {
		if s.records[i].StudentID == rec.StudentID && s.records[i].Status == StatusCheckedIn {
			return Record{}, ErrDuplicateStudentID
		}
	}

	rec.DevicePhotos = append([]string(nil), rec.DevicePhotos...)
	s.byID[rec.RecordID] = len(s.records)
	s.records = append(s.records, rec)
	return copyRecord(rec), nil
}

func (s *MemoryStore) FindByStudentID(_ context.Context, studentID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Most recent check-in wins when historical records exist.
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].StudentID == studentID {
			return copyRecord(s.records[i]), nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *MemoryStore) FindByRecordID(_ context.Context, recordID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[recordID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return copyRecord(s.records[i]), nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]Record, 0, len(s.records))
	for i := range s.records {
		rec := s.records[i]
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if needle != "" && !matchesSearch(rec, needle) {
			continue
		}
		out = append(out, copyRecord(rec))
	}
	return out, nil
}

func (s *MemoryStore) Checkout(_ context.Context, recordID string, at time.Time) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[recordID]
	if !ok {
		return Record{}, ErrNotFound
	}
	if s.records[i].Status != StatusCheckedIn {
		return Record{}, ErrAlreadyCheckedOut
	}
	s.records[i].Status = StatusCheckedOut
	s.records[i].CheckOutTime = &at
	return copyRecord(s.records[i]), nil
}

func matchesSearch(rec Record, needle string) bool {
	return strings.Contains(strings.ToLower(rec.StudentName), needle) ||
		strings.Contains(strings.ToLower(rec.StudentID), needle) ||
		strings.Contains(strings.ToLower(rec.ClassName), needle)
}

func copyRecord(rec Record) Record {
	rec.DevicePhotos = append([]string(nil), rec.DevicePhotos...)
	if rec.CheckOutTime != nil {
		t := *rec.CheckOutTime
		rec.CheckOutTime = &t
	}
	return rec
}
