package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps threads in a map for tests and redis-free development.
type InMemoryStore struct {
	mu      sync.RWMutex
	threads map[uuid.UUID]*Thread
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{threads: make(map[uuid.UUID]*Thread)}
}

func (s *InMemoryStore) Create(_ context.Context, complaintID uuid.UUID, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.threads[complaintID]; exists {
		return ErrExists
	}
	if language == "" {
		language = DefaultLanguage
	}
	now := time.Now()
	s.threads[complaintID] = &Thread{
		ComplaintID: complaintID,
		Messages:    []Message{},
		Language:    language,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, complaintID uuid.UUID) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[complaintID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *t
	copied.Messages = append([]Message(nil), t.Messages...)
	return &copied, nil
}

func (s *InMemoryStore) Append(_ context.Context, complaintID uuid.UUID, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[complaintID]
	if !ok {
		return ErrNotFound
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	t.Messages = append(t.Messages, msg)
	t.UpdatedAt = time.Now()
	return nil
}
