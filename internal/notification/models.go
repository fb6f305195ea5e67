// Package notification keeps per-user in-app notifications. Writes are
// best-effort side effects of the complaint workflows; a failed notification
// never fails the operation that triggered it.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type tags what happened.
type Type string

const (
	TypeComplaintSubmitted Type = "complaint_submitted"
	TypeStatusUpdated      Type = "status_updated"
	TypeCaseAssigned       Type = "case_assigned"
	TypeReportFiled        Type = "report_filed"
	TypeEvidenceVerified   Type = "evidence_verified"
)

// Notification is one unread-until-acknowledged message for a user.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      Type
	Title     string
	Message   string
	Link      string
	Read      bool
	CreatedAt time.Time
}
