//go:build integration

package conversation_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"cybercell/internal/conversation"
	"cybercell/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *conversation.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = conversation.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	complaintID := uuid.New()

	s.Require().NoError(s.store.Create(ctx, complaintID, ""))

	thread, err := s.store.Get(ctx, complaintID)
	s.Require().NoError(err)
	s.Equal(conversation.DefaultLanguage, thread.Language)
	s.Empty(thread.Messages)

	// Creating again must not clobber the thread.
	s.ErrorIs(s.store.Create(ctx, complaintID, "en"), conversation.ErrExists)

	_, err = s.store.Get(ctx, uuid.New())
	s.ErrorIs(err, conversation.ErrNotFound)
}

func (s *RedisStoreSuite) TestAppend() {
	ctx := context.Background()
	complaintID := uuid.New()
	s.Require().NoError(s.store.Create(ctx, complaintID, "en"))

	s.Require().NoError(s.store.Append(ctx, complaintID, conversation.Message{
		Role:    conversation.RoleUser,
		Content: "What is the status of my complaint?",
	}))
	s.Require().NoError(s.store.Append(ctx, complaintID, conversation.Message{
		Role:    conversation.RoleAssistant,
		Content: "Your complaint is under review.",
	}))

	thread, err := s.store.Get(ctx, complaintID)
	s.Require().NoError(err)
	s.Require().Len(thread.Messages, 2)
	s.Equal(conversation.RoleUser, thread.Messages[0].Role)
	s.False(thread.Messages[0].Timestamp.IsZero())

	s.ErrorIs(s.store.Append(ctx, uuid.New(), conversation.Message{
		Role:    conversation.RoleUser,
		Content: "hello",
	}), conversation.ErrNotFound)
}
