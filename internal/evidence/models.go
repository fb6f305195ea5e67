// Package evidence archives uploaded artifacts into the content-addressable
// store (required) and the backup object store (best-effort), and persists
// per-file evidence records.
package evidence

import (
	"time"

	"github.com/google/uuid"
)

// Evidence is one uploaded artifact owned by exactly one complaint. Verified
// starts false and is only set by the separate verification workflow.
type Evidence struct {
	ID          uuid.UUID
	ComplaintID uuid.UUID
	FileName    string
	MediaType   string
	ByteSize    int64
	// Address is this file's own content address, computed independently of
	// the complaint's canonical address even for identical bytes.
	Address    string
	Verified   bool
	UploadedAt time.Time
}

// File is an uploaded artifact prior to archiving.
type File struct {
	Name      string
	MediaType string
	Bytes     []byte
}

// ArchiveResult reports where the files landed.
type ArchiveResult struct {
	// CanonicalAddress is the first file's content address; it becomes the
	// complaint's evidence reference.
	CanonicalAddress string
	// Addresses holds one content address per input file, in input order,
	// from the batch write. Per-file evidence rows are addressed again
	// separately; see Archiver.AddressFile.
	Addresses []string
}
