package notification

import (
	"context"

	"github.com/google/uuid"

	dErrors "cybercell/pkg/domain-errors"
)

var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "notification not found")

// listLimit caps how many notifications a single fetch returns.
const listLimit = 50

// Store persists notifications.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
