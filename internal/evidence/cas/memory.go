package cas

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// InMemoryStore content-addresses blobs with sha256. It stands in for the
// pinning service in tests and ledger-free development.
type InMemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{blobs: make(map[string][]byte)}
}

func (s *InMemoryStore) Add(_ context.Context, _ string, content []byte) (string, error) {
	sum := sha256.Sum256(content)
	address := hex.EncodeToString(sum[:])
	s.mu.Lock()
	s.blobs[address] = append([]byte(nil), content...)
	s.mu.Unlock()
	return address, nil
}

func (s *InMemoryStore) AddBatch(ctx context.Context, files []NamedContent) ([]string, error) {
	out := make([]string, 0, len(files))
	for _, f := range files {
		address, err := s.Add(ctx, f.Name, f.Content)
		if err != nil {
			return nil, err
		}
		out = append(out, address)
	}
	return out, nil
}

// Get retrieves a blob by address; used by tests to assert durability.
func (s *InMemoryStore) Get(address string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[address]
	return blob, ok
}
