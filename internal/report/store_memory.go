package report

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps incident reports in maps keyed both ways.
type InMemoryStore struct {
	mu          sync.RWMutex
	byNumber    map[string]*IncidentReport
	byComplaint map[uuid.UUID]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byNumber:    make(map[string]*IncidentReport),
		byComplaint: make(map[uuid.UUID]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, r *IncidentReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byComplaint[r.ComplaintID]; exists {
		return ErrAlreadyFiled
	}
	if _, exists := s.byNumber[r.ReportNumber]; exists {
		return ErrDuplicateNumber
	}
	if r.FiledAt.IsZero() {
		r.FiledAt = time.Now()
	}
	stored := *r
	stored.Sections = append([]string(nil), r.Sections...)
	s.byNumber[r.ReportNumber] = &stored
	s.byComplaint[r.ComplaintID] = r.ReportNumber
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for number, r := range s.byNumber {
		if r.ID == id {
			delete(s.byNumber, number)
			delete(s.byComplaint, r.ComplaintID)
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) FindByNumber(_ context.Context, number string) (*IncidentReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byNumber[number]
	if !ok {
		return nil, ErrNotFound
	}
	return copyReport(r), nil
}

func (s *InMemoryStore) FindByComplaint(_ context.Context, complaintID uuid.UUID) (*IncidentReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	number, ok := s.byComplaint[complaintID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyReport(s.byNumber[number]), nil
}

func copyReport(r *IncidentReport) *IncidentReport {
	copied := *r
	copied.Sections = append([]string(nil), r.Sections...)
	return &copied
}
