package resetkeys

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
)

// MemoryStore keeps records in process memory. A restart forgets every
// pending reset. The mutex only ever covers map access.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]domain.ResetRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.ResetRecord)}
}

func (s *MemoryStore) Put(_ context.Context, key string, rec domain.ResetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (domain.ResetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return domain.ResetRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return ErrNotFound
	}
	delete(s.records, key)
	return nil
}

func (s *MemoryStore) Purge(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, rec := range s.records {
		if rec.IssuedAt.Before(cutoff) {
			delete(s.records, key)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Len reports the number of pending records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
