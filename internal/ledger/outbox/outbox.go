// Package outbox is the retry hook for failed best-effort ledger mirrors.
// The coordinator never retries a mirror synchronously within a request; it
// enqueues the failed write here, and an out-of-process consumer (not part of
// this repo) replays entries against the ledgers.
package outbox

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Ledger names for Entry.Ledger.
const (
	LedgerPublic     = "public"
	LedgerConsortium = "consortium"
)

// Operation names for Entry.Op.
const (
	OpSubmitComplaint = "submit_complaint"
	OpUpdateStatus    = "update_status"
	OpFileReport      = "file_report"
)

// Entry is one failed mirror write awaiting replay.
type Entry struct {
	Ledger          string          `json:"ledger"`
	Op              string          `json:"op"`
	ComplaintNumber string          `json:"complaint_number"`
	Payload         json.RawMessage `json:"payload,omitempty"`
	FailedAt        time.Time       `json:"failed_at"`
}

// Outbox accepts failed mirror writes for asynchronous replay.
type Outbox interface {
	Enqueue(ctx context.Context, entry Entry) error
}

// InMemory collects entries in memory; used in tests and when no broker is
// configured.
type InMemory struct {
	mu      sync.Mutex
	entries []Entry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (o *InMemory) Enqueue(_ context.Context, entry Entry) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if entry.FailedAt.IsZero() {
		entry.FailedAt = time.Now()
	}
	o.entries = append(o.entries, entry)
	return nil
}

// Entries returns a snapshot of everything enqueued so far.
func (o *InMemory) Entries() []Entry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Entry(nil), o.entries...)
}
