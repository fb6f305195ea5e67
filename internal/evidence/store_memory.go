package evidence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps evidence records in a map for tests and development.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Evidence
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[uuid.UUID]*Evidence)}
}

func (s *InMemoryStore) Create(_ context.Context, e *Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.UploadedAt.IsZero() {
		e.UploadedAt = time.Now()
	}
	stored := *e
	s.records[e.ID] = &stored
	return nil
}

func (s *InMemoryStore) ListByComplaint(_ context.Context, complaintID uuid.UUID) ([]*Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Evidence
	for _, e := range s.records {
		if e.ComplaintID == complaintID {
			copied := *e
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (s *InMemoryStore) MarkVerified(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	e.Verified = true
	return nil
}
