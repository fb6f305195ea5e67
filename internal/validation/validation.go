// Package validation checks inbound complaint and report payloads before any
// workflow runs. All failures carry the validation error code so the HTTP
// layer maps them to 400 uniformly.
package validation

import (
	"strings"

	"github.com/asaskevich/govalidator"

	"cybercell/internal/complaint"
	"cybercell/internal/evidence"
	dErrors "cybercell/pkg/domain-errors"
)

// Upload limits. Counts and sizes are enforced here so the archiver only ever
// sees acceptable batches.
const (
	MaxEvidenceFiles = 5
	MaxFileBytes     = 10 << 20
)

// allowedMediaTypes is the closed set of evidence content types.
var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"audio/mpeg":      true,
	"audio/wav":       true,
	"audio/ogg":       true,
	"video/mp4":       true,
	"video/webm":      true,
	"application/pdf": true,
	"text/plain":      true,
}

// CreateComplaintRequest is the decoded complaint submission payload.
type CreateComplaintRequest struct {
	Category           string   `json:"category"`
	Description        string   `json:"description"`
	Amount             *int64   `json:"amount,omitempty"`
	Location           Location `json:"location"`
	Ongoing            bool     `json:"ongoing"`
	HoursSinceIncident *float64 `json:"hours_since_incident,omitempty"`
	Language           string   `json:"language,omitempty"`
}

// Location mirrors complaint.Location for decoding.
type Location struct {
	State    string `json:"state"`
	District string `json:"district"`
	Pincode  string `json:"pincode,omitempty"`
	Address  string `json:"address,omitempty"`
}

// ValidateCreateComplaint checks the submission payload and its files.
func ValidateCreateComplaint(req CreateComplaintRequest, files []evidence.File) error {
	if !complaint.ValidCategory(complaint.Category(req.Category)) {
		return dErrors.Newf(dErrors.CodeValidation, "unknown category %q", req.Category)
	}
	if !govalidator.StringLength(strings.TrimSpace(req.Description), "20", "5000") {
		return dErrors.New(dErrors.CodeValidation, "description must be between 20 and 5000 characters")
	}
	if req.Amount != nil && *req.Amount < 0 {
		return dErrors.New(dErrors.CodeValidation, "amount cannot be negative")
	}
	if req.HoursSinceIncident != nil && *req.HoursSinceIncident < 0 {
		return dErrors.New(dErrors.CodeValidation, "hours_since_incident cannot be negative")
	}
	if err := validateLocation(req.Location); err != nil {
		return err
	}
	return validateFiles(files)
}

func validateLocation(loc Location) error {
	if !govalidator.StringLength(strings.TrimSpace(loc.State), "2", "100") {
		return dErrors.New(dErrors.CodeValidation, "location state is required")
	}
	if !govalidator.StringLength(strings.TrimSpace(loc.District), "2", "100") {
		return dErrors.New(dErrors.CodeValidation, "location district is required")
	}
	if loc.Pincode != "" && !govalidator.Matches(loc.Pincode, `^[1-9][0-9]{5}$`) {
		return dErrors.New(dErrors.CodeValidation, "invalid pincode")
	}
	return nil
}

func validateFiles(files []evidence.File) error {
	if len(files) > MaxEvidenceFiles {
		return dErrors.Newf(dErrors.CodeValidation, "at most %d evidence files per complaint", MaxEvidenceFiles)
	}
	for _, f := range files {
		if strings.TrimSpace(f.Name) == "" {
			return dErrors.New(dErrors.CodeValidation, "evidence file name is required")
		}
		if len(f.Bytes) == 0 {
			return dErrors.Newf(dErrors.CodeValidation, "evidence file %q is empty", f.Name)
		}
		if len(f.Bytes) > MaxFileBytes {
			return dErrors.Newf(dErrors.CodeValidation, "evidence file %q exceeds the size limit", f.Name)
		}
		if !allowedMediaTypes[f.MediaType] {
			return dErrors.Newf(dErrors.CodeValidation, "unsupported media type %q", f.MediaType)
		}
	}
	return nil
}

// UpdateStatusRequest is the decoded status transition payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ValidateUpdateStatus checks the target status is a known value. Whether the
// transition is legal is the coordinator's call.
func ValidateUpdateStatus(req UpdateStatusRequest) error {
	if !complaint.ValidStatus(complaint.Status(req.Status)) {
		return dErrors.Newf(dErrors.CodeValidation, "unknown status %q", req.Status)
	}
	return nil
}

// FileReportRequest is the decoded report filing payload.
type FileReportRequest struct {
	ComplaintID string   `json:"complaint_id"`
	StationCode string   `json:"station_code"`
	Sections    []string `json:"sections,omitempty"`
	Remarks     string   `json:"remarks,omitempty"`
}

// ValidateFileReport checks the filing payload.
func ValidateFileReport(req FileReportRequest) error {
	if !govalidator.IsUUID(req.ComplaintID) {
		return dErrors.New(dErrors.CodeValidation, "complaint_id must be a UUID")
	}
	if !govalidator.Matches(req.StationCode, `^[A-Z0-9]{3,10}$`) {
		return dErrors.New(dErrors.CodeValidation, "station_code must be 3-10 uppercase alphanumerics")
	}
	for _, section := range req.Sections {
		if strings.TrimSpace(section) == "" {
			return dErrors.New(dErrors.CodeValidation, "sections contain empty value")
		}
	}
	if len(req.Remarks) > 2000 {
		return dErrors.New(dErrors.CodeValidation, "remarks too long")
	}
	return nil
}
