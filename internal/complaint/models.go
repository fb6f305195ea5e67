// Package complaint owns the complaint lifecycle: the record model, the
// status state machine, and the coordinator that sequences writes across the
// record store, evidence archiver, and ledger mirrors.
package complaint

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Category is a crime category from the closed set enforced by validation.
type Category string

const (
	CategoryFinancialTheft   Category = "Financial Theft"
	CategoryFraudCall        Category = "Fraud Call"
	CategoryOTPScam          Category = "OTP Scam"
	CategoryOnlineHarassment Category = "Online Harassment"
	CategoryPhishing         Category = "Phishing"
	CategoryIdentityTheft    Category = "Identity Theft"
	CategoryCyberBullying    Category = "Cyber Bullying"
	CategoryDataBreach       Category = "Data Breach"
	CategoryRansomware       Category = "Ransomware"
	CategoryOther            Category = "Other"
)

// Categories lists the closed category set in display order.
var Categories = []Category{
	CategoryFinancialTheft,
	CategoryFraudCall,
	CategoryOTPScam,
	CategoryOnlineHarassment,
	CategoryPhishing,
	CategoryIdentityTheft,
	CategoryCyberBullying,
	CategoryDataBreach,
	CategoryRansomware,
	CategoryOther,
}

// ValidCategory reports whether c belongs to the closed set.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Location is the structured incident location, stored as JSONB.
type Location struct {
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Value serializes the location for storage.
func (l Location) Value() ([]byte, error) { return json.Marshal(l) }

// Complaint is the authoritative record. The record store is its sole owner;
// ledger copies are projections with no authority.
type Complaint struct {
	ID              uuid.UUID
	ComplaintNumber string
	ReporterID      uuid.UUID
	Category        Category
	Description     string
	// Amount is the reported monetary loss in whole rupees; nil when the
	// incident has no financial component.
	Amount   *int64
	Location Location
	Status   Status
	// SeverityScore is computed once at creation and never recomputed.
	SeverityScore int
	// EvidenceAddress is the canonical content address (the first archived
	// file's address).
	EvidenceAddress string
	PublicTxRef     *string
	ConsortiumRef   *string
	AssignedTo      *uuid.UUID
	ReportNumber    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
