package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps notifications in a map per user.
type InMemoryStore struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID][]*Notification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byUser: make(map[uuid.UUID][]*Notification)}
}

func (s *InMemoryStore) Create(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	stored := *n
	s.byUser[n.UserID] = append(s.byUser[n.UserID], &stored)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Notification
	for _, n := range s.byUser[userID] {
		if unreadOnly && n.Read {
			continue
		}
		copied := *n
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > listLimit {
		out = out[:listLimit]
	}
	return out, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, id uuid.UUID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.byUser[userID] {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.byUser[userID] {
		n.Read = true
	}
	return nil
}
