package evidence

import (
	"context"

	"github.com/google/uuid"

	dErrors "cybercell/pkg/domain-errors"
)

var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "evidence not found")

// Store persists per-file evidence records. Rows are created after the owning
// complaint exists; the verification flag is flipped only by the separate
// verification workflow.
type Store interface {
	Create(ctx context.Context, e *Evidence) error
	ListByComplaint(ctx context.Context, complaintID uuid.UUID) ([]*Evidence, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
}
