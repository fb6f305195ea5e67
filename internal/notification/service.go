package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Service writes and reads notifications. Notify swallows store failures so
// callers can fire it unconditionally.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Notify records a notification for the user, best-effort.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, typ Type, title, message, link string) {
	n := &Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.store.Create(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "failed to create notification",
			"user_id", userID,
			"type", typ,
			"error", err,
		)
	}
}

// ListForUser returns the user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*Notification, error) {
	return s.store.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead acknowledges one notification owned by the user.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	return s.store.MarkRead(ctx, id, userID)
}

// MarkAllRead acknowledges everything unread for the user.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.store.MarkAllRead(ctx, userID)
}
