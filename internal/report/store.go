package report

import (
	"context"

	"github.com/google/uuid"

	dErrors "cybercell/pkg/domain-errors"
)

var (
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "incident report not found")
	// ErrDuplicateNumber is the uniqueness backstop for generated report
	// numbers; the filing workflow retries generation on it.
	ErrDuplicateNumber = dErrors.New(dErrors.CodeConflict, "report number already exists")
	// ErrAlreadyFiled enforces the one-report-per-complaint rule at the store.
	ErrAlreadyFiled = dErrors.New(dErrors.CodeConflict, "a report is already filed for this complaint")
)

// Store persists incident reports. Both the report number and the complaint
// id are unique; the store distinguishes which constraint an insert tripped.
// Delete exists only so the filing workflow can compensate when the
// complaint fails to advance after the report row was inserted.
type Store interface {
	Create(ctx context.Context, r *IncidentReport) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByNumber(ctx context.Context, number string) (*IncidentReport, error)
	FindByComplaint(ctx context.Context, complaintID uuid.UUID) (*IncidentReport, error)
}
