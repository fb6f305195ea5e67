package evidence

import (
	"context"
	"log/slog"
	"time"

	"cybercell/internal/evidence/backup"
	"cybercell/internal/evidence/cas"
	"cybercell/internal/platform/metrics"
	dErrors "cybercell/pkg/domain-errors"
	"cybercell/pkg/platform/circuit"
)

// Archiver writes evidence to the content-addressable store (the required,
// durable path) and, best-effort, to the backup object store. If any CAS
// write fails the whole archive fails; no complaint is created downstream.
type Archiver struct {
	cas     cas.Store
	backup  backup.Store
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures an Archiver.
type Option func(*Archiver)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Archiver) { a.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Archiver) { a.metrics = m }
}

// NewArchiver builds an Archiver. backupStore may be backup.Noop{} when no
// backup bucket is configured.
func NewArchiver(casStore cas.Store, backupStore backup.Store, opts ...Option) *Archiver {
	a := &Archiver{
		cas:     casStore,
		backup:  backupStore,
		breaker: circuit.New("evidence-backup", circuit.WithFailureThreshold(3)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Archive pins all files to the CAS and returns the canonical address (the
// first file's) plus per-file batch addresses. The backup write runs after
// the CAS succeeds and its failure is swallowed; it never fails the archive.
func (a *Archiver) Archive(ctx context.Context, files []File) (*ArchiveResult, error) {
	if len(files) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one evidence file is required")
	}

	start := time.Now()
	batch := make([]cas.NamedContent, 0, len(files))
	for _, f := range files {
		batch = append(batch, cas.NamedContent{Name: f.Name, Content: f.Bytes})
	}

	addresses, err := a.cas.AddBatch(ctx, batch)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "evidence archive failed")
	}
	a.metrics.ObserveArchive(time.Since(start))

	a.backupBestEffort(ctx, files)

	return &ArchiveResult{
		CanonicalAddress: addresses[0],
		Addresses:        addresses,
	}, nil
}

// AddressFile content-addresses a single file for its evidence record. This
// is issued separately from the canonical batch write, so the same bytes are
// addressed twice; callers must not assume the two addresses are identical.
func (a *Archiver) AddressFile(ctx context.Context, f File) (string, error) {
	address, err := a.cas.Add(ctx, f.Name, f.Bytes)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "evidence addressing failed")
	}
	return address, nil
}

func (a *Archiver) backupBestEffort(ctx context.Context, files []File) {
	if a.backup == nil {
		return
	}
	if a.breaker.IsOpen() {
		a.logger.WarnContext(ctx, "backup store circuit open, skipping backup",
			"files", len(files))
		return
	}
	for _, f := range files {
		if err := a.backup.Put(ctx, f.Name, f.MediaType, f.Bytes); err != nil {
			a.breaker.RecordFailure()
			a.logger.WarnContext(ctx, "backup store write failed, continuing with primary only",
				"file", f.Name,
				"error", err,
			)
			continue
		}
		a.breaker.RecordSuccess()
	}
}
