package conversation

import (
	"context"

	"github.com/google/uuid"

	dErrors "cybercell/pkg/domain-errors"
)

var (
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "conversation thread not found")
	ErrExists   = dErrors.New(dErrors.CodeConflict, "conversation thread already exists")
)

// Store persists conversation threads keyed by complaint id.
type Store interface {
	Create(ctx context.Context, complaintID uuid.UUID, language string) error
	Get(ctx context.Context, complaintID uuid.UUID) (*Thread, error)
	Append(ctx context.Context, complaintID uuid.UUID, msg Message) error
}
