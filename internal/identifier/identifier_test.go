package identifier

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(t time.Time, n int) *Generator {
	return NewWithClock(func() time.Time { return t }, func(int) int { return n })
}

func TestComplaintNumber_Format(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	g := fixed(at, 42)

	assert.Equal(t, fmt.Sprintf("CC-%d-42", at.UnixMilli()), g.ComplaintNumber())
}

func TestReportNumber_Format(t *testing.T) {
	g := fixed(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), 7)

	assert.Equal(t, "JH/RNC01/2026/7", g.ReportNumber("JH", "RNC01"))
}

func TestComplaintNumber_SuffixStaysInRange(t *testing.T) {
	g := New()
	pattern := regexp.MustCompile(`^CC-\d{13}-\d{1,4}$`)
	for range 100 {
		n := g.ComplaintNumber()
		require.True(t, pattern.MatchString(n), "unexpected format: %s", n)
	}
}

func TestFreshSuffixOnRetry(t *testing.T) {
	// Retrying after a uniqueness conflict must be able to produce a
	// different number even within the same millisecond.
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	suffixes := []int{1111, 2222}
	i := 0
	g := NewWithClock(func() time.Time { return at }, func(int) int {
		n := suffixes[i%len(suffixes)]
		i++
		return n
	})

	first := g.ComplaintNumber()
	second := g.ComplaintNumber()
	assert.NotEqual(t, first, second)
}
