// Package severity computes the 0-100 severity score fixed at complaint
// creation. Scoring is pure: same input, same score, no I/O.
package severity

import "strings"

// EvidenceKind ranks evidence fidelity. Only the single highest-ranked kind
// present contributes to the score; kinds are not additive.
type EvidenceKind int

const (
	EvidenceNone EvidenceKind = iota
	EvidenceDocument
	EvidenceImage
	EvidenceAudio
	EvidenceVideo
)

// Input carries the complaint attributes that drive scoring. Amount is nil
// when the complaint reports no monetary loss. HoursSinceIncident is ignored
// when Ongoing is true.
type Input struct {
	Category           string
	Amount             *int64
	Evidence           EvidenceKind
	Ongoing            bool
	HoursSinceIncident *float64
}

// categoryWeights is the fixed lookup for the category component (0-30).
// Unlisted categories fall back to the default weight.
var categoryWeights = map[string]int{
	"Financial Theft":   30,
	"Ransomware":        30,
	"Identity Theft":    25,
	"Online Harassment": 25,
	"Data Breach":       25,
	"Fraud Call":        20,
	"OTP Scam":          20,
	"Phishing":          15,
	"Cyber Bullying":    15,
}

const defaultCategoryWeight = 10

// Score sums four independent weighted components and caps the result at 100.
// Every branch is non-negative, so the result never goes below zero.
func Score(in Input) int {
	score := financialComponent(in.Amount)
	score += categoryComponent(in.Category)
	score += evidenceComponent(in.Evidence)
	score += urgencyComponent(in.Ongoing, in.HoursSinceIncident)

	if score > 100 {
		return 100
	}
	return score
}

// financialComponent scores monetary impact (0-40).
func financialComponent(amount *int64) int {
	if amount == nil || *amount <= 0 {
		return 5
	}
	switch {
	case *amount > 100000:
		return 40
	case *amount > 50000:
		return 30
	case *amount > 10000:
		return 20
	default:
		return 10
	}
}

// categoryComponent scores crime category weight (0-30).
func categoryComponent(category string) int {
	if w, ok := categoryWeights[category]; ok {
		return w
	}
	return defaultCategoryWeight
}

// evidenceComponent scores evidence fidelity (0-20): the highest-ranked kind
// present wins.
func evidenceComponent(kind EvidenceKind) int {
	switch kind {
	case EvidenceVideo:
		return 20
	case EvidenceAudio:
		return 15
	case EvidenceImage:
		return 10
	default:
		return 5
	}
}

// urgencyComponent scores recency (0-10): ongoing incidents first, then
// reports filed within 24 hours.
func urgencyComponent(ongoing bool, hoursSince *float64) int {
	if ongoing {
		return 10
	}
	if hoursSince != nil && *hoursSince < 24 {
		return 7
	}
	return 3
}

// Level buckets a score for presentation and triage filtering.
func Level(score int) string {
	switch {
	case score >= 81:
		return "critical"
	case score >= 61:
		return "high"
	case score >= 31:
		return "medium"
	default:
		return "low"
	}
}

// Priority maps a score to a 1 (most urgent) to 5 queue priority.
func Priority(score int) int {
	switch {
	case score >= 80:
		return 1
	case score >= 60:
		return 2
	case score >= 40:
		return 3
	case score >= 20:
		return 4
	default:
		return 5
	}
}

// KindForMediaType classifies a declared media type into an EvidenceKind.
func KindForMediaType(mediaType string) EvidenceKind {
	switch {
	case strings.HasPrefix(mediaType, "video/"):
		return EvidenceVideo
	case strings.HasPrefix(mediaType, "audio/"):
		return EvidenceAudio
	case strings.HasPrefix(mediaType, "image/"):
		return EvidenceImage
	case mediaType == "":
		return EvidenceNone
	default:
		return EvidenceDocument
	}
}

// HighestKind returns the highest-fidelity kind among the declared media
// types, applying the single-kind tie-break rule.
func HighestKind(mediaTypes []string) EvidenceKind {
	highest := EvidenceNone
	for _, mt := range mediaTypes {
		if k := KindForMediaType(mt); k > highest {
			highest = k
		}
	}
	return highest
}
