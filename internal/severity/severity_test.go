package severity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestScore_MaxesOutAtHundred(t *testing.T) {
	score := Score(Input{
		Category: "Financial Theft",
		Amount:   ptr(int64(150000)),
		Evidence: EvidenceVideo,
		Ongoing:  true,
	})
	assert.Equal(t, 100, score)
}

func TestScore_UnlistedCategoryWithImage(t *testing.T) {
	score := Score(Input{
		Category:           "Crypto Rug Pull",
		Evidence:           EvidenceImage,
		HoursSinceIncident: ptr(48.0),
	})
	// 5 (no amount) + 10 (default category) + 10 (image) + 3 (stale)
	assert.Equal(t, 28, score)
}

func TestScore_ComponentFloors(t *testing.T) {
	// Amount of exactly 1 with lowest-tier everything: 10+10+5+3 = 28,
	// and no valid input can go below the component floors (5+10+5+3 = 23).
	score := Score(Input{
		Category: "Other",
		Amount:   ptr(int64(1)),
		Evidence: EvidenceNone,
	})
	assert.Equal(t, 28, score)

	floor := Score(Input{Category: "Other"})
	assert.Equal(t, 23, floor)
}

func TestScore_Deterministic(t *testing.T) {
	in := Input{
		Category:           "Phishing",
		Amount:             ptr(int64(60000)),
		Evidence:           EvidenceAudio,
		HoursSinceIncident: ptr(3.5),
	}
	assert.Equal(t, Score(in), Score(in))
}

func TestScore_NeverExceedsHundred(t *testing.T) {
	for _, category := range []string{"Financial Theft", "Ransomware", "Other", "???"} {
		for _, kind := range []EvidenceKind{EvidenceNone, EvidenceImage, EvidenceAudio, EvidenceVideo} {
			score := Score(Input{
				Category: category,
				Amount:   ptr(int64(10_000_000)),
				Evidence: kind,
				Ongoing:  true,
			})
			assert.LessOrEqual(t, score, 100)
			assert.GreaterOrEqual(t, score, 23)
		}
	}
}

func TestScore_FinancialTiers(t *testing.T) {
	cases := []struct {
		name   string
		amount *int64
		want   int
	}{
		{"no amount", nil, 5},
		{"zero amount", ptr(int64(0)), 5},
		{"small", ptr(int64(500)), 10},
		{"boundary 10000", ptr(int64(10000)), 10},
		{"mid", ptr(int64(10001)), 20},
		{"large", ptr(int64(50001)), 30},
		{"severe", ptr(int64(100001)), 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, financialComponent(tc.amount))
		})
	}
}

func TestScore_UrgencyTiers(t *testing.T) {
	assert.Equal(t, 10, urgencyComponent(true, nil))
	assert.Equal(t, 10, urgencyComponent(true, ptr(100.0)))
	assert.Equal(t, 7, urgencyComponent(false, ptr(23.9)))
	assert.Equal(t, 3, urgencyComponent(false, ptr(24.0)))
	assert.Equal(t, 3, urgencyComponent(false, nil))
}

func TestHighestKind_TieBreak(t *testing.T) {
	// Multiple kinds present: only the highest-ranked one counts.
	kind := HighestKind([]string{"image/png", "audio/wav", "video/mp4", "application/pdf"})
	assert.Equal(t, EvidenceVideo, kind)

	kind = HighestKind([]string{"application/pdf", "image/jpeg"})
	assert.Equal(t, EvidenceImage, kind)

	assert.Equal(t, EvidenceNone, HighestKind(nil))
}

func TestLevelAndPriority(t *testing.T) {
	assert.Equal(t, "critical", Level(81))
	assert.Equal(t, "high", Level(61))
	assert.Equal(t, "medium", Level(31))
	assert.Equal(t, "low", Level(30))

	assert.Equal(t, 1, Priority(95))
	assert.Equal(t, 2, Priority(60))
	assert.Equal(t, 3, Priority(40))
	assert.Equal(t, 4, Priority(20))
	assert.Equal(t, 5, Priority(19))
}
