package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	platformredis "cybercell/internal/platform/redis"
)

// RedisStore persists threads as JSON values keyed by complaint id. Threads
// are small and read-modify-written whole; the assistant is the only writer
// after creation, so last-write-wins on Append is acceptable.
type RedisStore struct {
	client *platformredis.Client
}

func NewRedisStore(client *platformredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func threadKey(complaintID uuid.UUID) string {
	return "conversation:" + complaintID.String()
}

func (s *RedisStore) Create(ctx context.Context, complaintID uuid.UUID, language string) error {
	if language == "" {
		language = DefaultLanguage
	}
	now := time.Now()
	thread := Thread{
		ComplaintID: complaintID,
		Messages:    []Message{},
		Language:    language,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	payload, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("encode thread: %w", err)
	}
	ok, err := s.client.SetNX(ctx, threadKey(complaintID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("create thread: %w", err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, complaintID uuid.UUID) (*Thread, error) {
	raw, err := s.client.Get(ctx, threadKey(complaintID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get thread: %w", err)
	}
	var thread Thread
	if err := json.Unmarshal(raw, &thread); err != nil {
		return nil, fmt.Errorf("decode thread: %w", err)
	}
	return &thread, nil
}

func (s *RedisStore) Append(ctx context.Context, complaintID uuid.UUID, msg Message) error {
	thread, err := s.Get(ctx, complaintID)
	if err != nil {
		return err
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	thread.Messages = append(thread.Messages, msg)
	thread.UpdatedAt = time.Now()

	payload, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("encode thread: %w", err)
	}
	if err := s.client.Set(ctx, threadKey(complaintID), payload, 0).Err(); err != nil {
		return fmt.Errorf("append to thread: %w", err)
	}
	return nil
}
