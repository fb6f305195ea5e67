// Package identifier generates human-readable complaint and incident-report
// numbers.
//
// Neither format is collision-free by construction: a millisecond timestamp
// (or year) plus a four-digit random suffix can repeat under load. The record
// store's unique constraints are the real backstop; callers retry generation
// with a fresh suffix when an insert reports a duplicate.
package identifier

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// ComplaintPrefix is the human-readable prefix on complaint numbers.
const ComplaintPrefix = "CC"

// Generator produces complaint and report numbers. now and intn are
// injectable for deterministic tests.
type Generator struct {
	now  func() time.Time
	intn func(n int) int
}

// New builds a Generator using the wall clock and math/rand.
func New() *Generator {
	return &Generator{
		now:  time.Now,
		intn: rand.IntN,
	}
}

// NewWithClock builds a Generator with injected time and randomness sources.
func NewWithClock(now func() time.Time, intn func(n int) int) *Generator {
	return &Generator{now: now, intn: intn}
}

// ComplaintNumber returns "CC-<unixMillis>-<0..9999>".
func (g *Generator) ComplaintNumber() string {
	return fmt.Sprintf("%s-%d-%d", ComplaintPrefix, g.now().UnixMilli(), g.intn(10000))
}

// ReportNumber returns "<REGION>/<STATION>/<YEAR>/<0..9999>".
func (g *Generator) ReportNumber(region, stationCode string) string {
	return fmt.Sprintf("%s/%s/%d/%d", region, stationCode, g.now().Year(), g.intn(10000))
}
