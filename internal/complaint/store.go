package complaint

import (
	"context"

	"github.com/google/uuid"

	dErrors "cybercell/pkg/domain-errors"
)

// Store sentinel errors shared by the in-memory and postgres implementations.
var (
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "complaint not found")
	// ErrDuplicateNumber is the uniqueness backstop for generated complaint
	// numbers; the coordinator retries generation on it.
	ErrDuplicateNumber = dErrors.New(dErrors.CodeConflict, "complaint number already exists")
	// ErrStaleStatus means the row's status changed between read and write.
	ErrStaleStatus = dErrors.New(dErrors.CodeConflict, "complaint status changed concurrently")
)

// Filter narrows List results for the investigative queue views.
type Filter struct {
	Status      *Status
	MinSeverity *int
	AssignedTo  *uuid.UUID
}

// Store is the authoritative persistence contract for complaints. Status
// mutations are compare-and-swap on the expected current status so no
// workflow holds a lock across an out-of-process call.
type Store interface {
	Create(ctx context.Context, c *Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*Complaint, error)
	FindByNumber(ctx context.Context, number string) (*Complaint, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]*Complaint, error)
	List(ctx context.Context, filter Filter) ([]*Complaint, error)
	// UpdateStatus moves the row from one status to another atomically,
	// failing with ErrStaleStatus when the current status no longer matches.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	// MarkReportFiled advances the row to report_filed and records the report
	// number in one write.
	MarkReportFiled(ctx context.Context, id uuid.UUID, from Status, reportNumber string) error
	SetPublicTxRef(ctx context.Context, id uuid.UUID, txRef string) error
	SetConsortiumRef(ctx context.Context, id uuid.UUID, ref string) error
	Assign(ctx context.Context, id uuid.UUID, officerID uuid.UUID) error
}
