package complaint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps complaints in a map. It backs tests and ledger-free
// development environments.
type InMemoryStore struct {
	mu         sync.RWMutex
	complaints map[uuid.UUID]*Complaint
	byNumber   map[string]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		complaints: make(map[uuid.UUID]*Complaint),
		byNumber:   make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, c *Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byNumber[c.ComplaintNumber]; exists {
		return ErrDuplicateNumber
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	stored := *c
	s.complaints[c.ID] = &stored
	s.byNumber[c.ComplaintNumber] = c.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *InMemoryStore) FindByNumber(_ context.Context, number string) (*Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNumber[number]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s.complaints[id]
	return &copied, nil
}

func (s *InMemoryStore) ListByReporter(_ context.Context, reporterID uuid.UUID) ([]*Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Complaint
	for _, c := range s.complaints {
		if c.ReporterID == reporterID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context, filter Filter) ([]*Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Complaint
	for _, c := range s.complaints {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.MinSeverity != nil && c.SeverityScore < *filter.MinSeverity {
			continue
		}
		if filter.AssignedTo != nil && (c.AssignedTo == nil || *c.AssignedTo != *filter.AssignedTo) {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return ErrNotFound
	}
	if c.Status != from {
		return ErrStaleStatus
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) MarkReportFiled(_ context.Context, id uuid.UUID, from Status, reportNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return ErrNotFound
	}
	if c.Status != from {
		return ErrStaleStatus
	}
	c.Status = StatusReportFiled
	c.ReportNumber = &reportNumber
	c.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) SetPublicTxRef(_ context.Context, id uuid.UUID, txRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return ErrNotFound
	}
	c.PublicTxRef = &txRef
	c.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) SetConsortiumRef(_ context.Context, id uuid.UUID, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return ErrNotFound
	}
	c.ConsortiumRef = &ref
	c.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) Assign(_ context.Context, id uuid.UUID, officerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return ErrNotFound
	}
	c.AssignedTo = &officerID
	c.UpdatedAt = time.Now()
	return nil
}

func sortNewestFirst(cs []*Complaint) {
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].CreatedAt.After(cs[j].CreatedAt)
	})
}
