// Package report files incident reports against complaints. Filing is the
// only way a complaint reaches report_filed, and each complaint carries at
// most one report for its lifetime.
package report

import (
	"time"

	"github.com/google/uuid"
)

// IncidentReport is the formal report raised from a complaint. ReportNumber
// follows "REGION/STATION/YEAR/SEQ" and is unique across the system.
type IncidentReport struct {
	ID           uuid.UUID
	ReportNumber string
	ComplaintID  uuid.UUID
	StationCode  string
	Sections     []string
	Remarks      string
	FiledBy      uuid.UUID
	FiledAt      time.Time
}
