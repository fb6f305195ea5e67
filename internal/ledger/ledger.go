// Package ledger mirrors complaint state onto the two append-only ledgers.
// Both mirrors are non-authoritative projections: on any disagreement the
// record store wins, and every write here is best-effort from the
// coordinator's point of view.
package ledger

import (
	"context"
	"time"
)

// PublicNotifier mirrors complaint state onto the openly verifiable ledger.
type PublicNotifier interface {
	// SubmitComplaint anchors a new complaint and returns the transaction
	// reference recorded against the complaint row.
	SubmitComplaint(ctx context.Context, complaintNumber string, evidenceAddress string, severity int) (string, error)
	// UpdateStatus mirrors a status transition using the shared numeric
	// status encoding.
	UpdateStatus(ctx context.Context, complaintNumber string, statusCode uint8) error
	// FileReport anchors the report number against the complaint.
	FileReport(ctx context.Context, complaintNumber string, reportNumber string) error
}

// ConsortiumNotifier mirrors the full complaint projection onto the
// permissioned consortium ledger. Only creation is mirrored there; status
// updates go to the public ledger alone.
type ConsortiumNotifier interface {
	CreateComplaint(ctx context.Context, projection Projection) (string, error)
}

// Projection is the denormalized complaint copy the consortium ledger keeps.
type Projection struct {
	ID              string    `json:"id"`
	ComplaintNumber string    `json:"complaint_number"`
	ReporterID      string    `json:"reporter_id"`
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	SeverityScore   int       `json:"severity_score"`
	EvidenceAddress string    `json:"evidence_address"`
	PublicTxRef     string    `json:"public_tx_ref,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
