package complaint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"cybercell/internal/conversation"
	"cybercell/internal/evidence"
	"cybercell/internal/identifier"
	"cybercell/internal/ledger"
	"cybercell/internal/ledger/outbox"
	"cybercell/internal/notification"
	"cybercell/internal/platform/metrics"
	"cybercell/internal/platform/middleware"
	"cybercell/internal/severity"
	dErrors "cybercell/pkg/domain-errors"
)

// numberAttempts bounds complaint-number regeneration when the record store
// reports a duplicate.
const numberAttempts = 3

// Archiver is the slice of the evidence archiver the coordinator needs.
type Archiver interface {
	Archive(ctx context.Context, files []evidence.File) (*evidence.ArchiveResult, error)
	AddressFile(ctx context.Context, f evidence.File) (string, error)
}

// Actor identifies the caller for authority checks. Identity and role come
// from the trusted auth context.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// Notifier records in-app notifications, best-effort.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ notification.Type, title, message, link string)
}

// Service is the complaint lifecycle coordinator. It owns the state machine
// and sequences writes across the archiver, the record store, and the two
// ledger mirrors. Only the archiver's primary write and the record store gate
// success; everything after the authoritative persist is best-effort.
type Service struct {
	store         Store
	evidenceStore evidence.Store
	archiver      Archiver
	generator     *identifier.Generator
	public        ledger.PublicNotifier
	consortium    ledger.ConsortiumNotifier
	conversations conversation.Store
	notifier      Notifier
	retryQueue    outbox.Outbox
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	ledgerTimeout time.Duration

	// mirrors tracks in-flight best-effort tasks so shutdown can drain them;
	// caller disconnection never cancels them.
	mirrors sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithRetryQueue(q outbox.Outbox) Option {
	return func(s *Service) { s.retryQueue = q }
}

func WithLedgerTimeout(d time.Duration) Option {
	return func(s *Service) { s.ledgerTimeout = d }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService constructs the coordinator.
func NewService(
	store Store,
	evidenceStore evidence.Store,
	archiver Archiver,
	generator *identifier.Generator,
	public ledger.PublicNotifier,
	consortium ledger.ConsortiumNotifier,
	conversations conversation.Store,
	opts ...Option,
) *Service {
	s := &Service{
		store:         store,
		evidenceStore: evidenceStore,
		archiver:      archiver,
		generator:     generator,
		public:        public,
		consortium:    consortium,
		conversations: conversations,
		retryQueue:    outbox.NewInMemory(),
		logger:        slog.Default(),
		tracer:        otel.Tracer("cybercell/complaint"),
		ledgerTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput is a validated complaint submission. Validation (closed
// category set, description length, location shape) has already run.
type CreateInput struct {
	ReporterID         uuid.UUID
	Category           Category
	Description        string
	Amount             *int64
	Location           Location
	Ongoing            bool
	HoursSinceIncident *float64
	Language           string
	Files              []evidence.File
}

// Create runs the creation workflow. Ordering and failure policy:
//
//  1. archive evidence — failure aborts, nothing persisted
//  2. compute severity — pure
//  3. generate complaint number
//  4. persist with status submitted — the durability boundary
//  5. mirror to the public ledger (best-effort, async)
//  6. mirror to the consortium ledger (best-effort, async, independent of 5)
//  7. persist per-file evidence rows — per-file failures logged, no rollback
//  8. create the conversation thread — best-effort
func (s *Service) Create(ctx context.Context, in CreateInput) (*Complaint, error) {
	ctx, span := s.tracer.Start(ctx, "complaint.Create")
	defer span.End()

	// Complaints without evidence skip archiving entirely.
	var canonicalAddress string
	if len(in.Files) > 0 {
		archived, err := s.archiver.Archive(ctx, in.Files)
		if err != nil {
			return nil, err
		}
		canonicalAddress = archived.CanonicalAddress
	}

	mediaTypes := make([]string, 0, len(in.Files))
	for _, f := range in.Files {
		mediaTypes = append(mediaTypes, f.MediaType)
	}
	score := severity.Score(severity.Input{
		Category:           string(in.Category),
		Amount:             in.Amount,
		Evidence:           severity.HighestKind(mediaTypes),
		Ongoing:            in.Ongoing,
		HoursSinceIncident: in.HoursSinceIncident,
	})

	c, err := s.persistNew(ctx, in, score, canonicalAddress)
	if err != nil {
		return nil, err
	}
	s.metrics.IncComplaintsCreated()
	s.logger.InfoContext(ctx, "complaint created",
		"complaint_id", c.ID,
		"complaint_number", c.ComplaintNumber,
		"severity", c.SeverityScore,
	)

	// The complaint now exists regardless of what follows. Everything past
	// the durability boundary runs on a context that survives caller
	// disconnection so a dropped connection cannot lose evidence rows, the
	// thread, or the mirrors.
	detached := context.WithoutCancel(ctx)
	s.mirrorCreation(detached, c)
	s.persistEvidenceRows(detached, c.ID, in.Files)
	s.createThread(detached, c.ID, in.Language)
	if s.notifier != nil {
		s.notifier.Notify(detached, c.ReporterID, notification.TypeComplaintSubmitted,
			"Complaint registered",
			fmt.Sprintf("Your complaint %s has been registered.", c.ComplaintNumber),
			"/complaints/"+c.ID.String(),
		)
	}

	return c, nil
}

// persistNew inserts the row, regenerating the complaint number when the
// store's uniqueness constraint rejects it.
func (s *Service) persistNew(ctx context.Context, in CreateInput, score int, evidenceAddress string) (*Complaint, error) {
	for attempt := 0; attempt < numberAttempts; attempt++ {
		c := &Complaint{
			ID:              uuid.New(),
			ComplaintNumber: s.generator.ComplaintNumber(),
			ReporterID:      in.ReporterID,
			Category:        in.Category,
			Description:     in.Description,
			Amount:          in.Amount,
			Location:        in.Location,
			Status:          StatusSubmitted,
			SeverityScore:   score,
			EvidenceAddress: evidenceAddress,
		}
		err := s.store.Create(ctx, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist complaint")
		}
		s.logger.WarnContext(ctx, "complaint number collision, regenerating",
			"complaint_number", c.ComplaintNumber,
			"attempt", attempt+1,
		)
	}
	return nil, dErrors.New(dErrors.CodeConflict, "could not allocate a unique complaint number")
}

// mirrorCreation dispatches both ledger mirrors on a context detached from
// the request, so a disconnecting caller cannot leave the ledgers silently
// unsynchronized. The two mirrors are independent and run concurrently.
func (s *Service) mirrorCreation(ctx context.Context, c *Complaint) {
	detached := context.WithoutCancel(ctx)
	s.mirrors.Add(1)
	go func() {
		defer s.mirrors.Done()

		var g errgroup.Group
		g.Go(func() error {
			s.mirrorPublicSubmit(detached, c)
			return nil
		})
		g.Go(func() error {
			s.mirrorConsortiumCreate(detached, c)
			return nil
		})
		_ = g.Wait()
	}()
}

func (s *Service) mirrorPublicSubmit(ctx context.Context, c *Complaint) {
	callCtx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()

	txRef, err := s.public.SubmitComplaint(callCtx, c.ComplaintNumber, c.EvidenceAddress, c.SeverityScore)
	if err != nil {
		s.mirrorFailed(ctx, outbox.LedgerPublic, outbox.OpSubmitComplaint, c.ComplaintNumber, err)
		return
	}
	if txRef == "" {
		return
	}
	if err := s.store.SetPublicTxRef(ctx, c.ID, txRef); err != nil {
		s.logger.ErrorContext(ctx, "failed to record public ledger tx ref",
			"complaint_id", c.ID,
			"tx_ref", txRef,
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, "complaint mirrored to public ledger",
		"complaint_id", c.ID,
		"tx_ref", txRef,
	)
}

func (s *Service) mirrorConsortiumCreate(ctx context.Context, c *Complaint) {
	callCtx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()

	ref, err := s.consortium.CreateComplaint(callCtx, ledger.Projection{
		ID:              c.ID.String(),
		ComplaintNumber: c.ComplaintNumber,
		ReporterID:      c.ReporterID.String(),
		Category:        string(c.Category),
		Description:     c.Description,
		Status:          string(c.Status),
		SeverityScore:   c.SeverityScore,
		EvidenceAddress: c.EvidenceAddress,
		CreatedAt:       c.CreatedAt,
	})
	if err != nil {
		s.mirrorFailed(ctx, outbox.LedgerConsortium, outbox.OpSubmitComplaint, c.ComplaintNumber, err)
		return
	}
	if ref == "" {
		return
	}
	if err := s.store.SetConsortiumRef(ctx, c.ID, ref); err != nil {
		s.logger.ErrorContext(ctx, "failed to record consortium ledger ref",
			"complaint_id", c.ID,
			"error", err,
		)
	}
}

// mirrorFailed logs, counts, and enqueues a failed best-effort mirror for
// asynchronous replay. Mirror failures never reach the caller.
func (s *Service) mirrorFailed(ctx context.Context, ledgerName, op, complaintNumber string, err error) {
	s.logger.ErrorContext(ctx, "ledger mirror failed",
		"ledger", ledgerName,
		"op", op,
		"complaint_number", complaintNumber,
		"error", err,
	)
	s.metrics.IncMirrorFailure(ledgerName, op)
	if qErr := s.retryQueue.Enqueue(ctx, outbox.Entry{
		Ledger:          ledgerName,
		Op:              op,
		ComplaintNumber: complaintNumber,
	}); qErr != nil {
		s.logger.ErrorContext(ctx, "failed to enqueue mirror retry",
			"ledger", ledgerName,
			"op", op,
			"error", qErr,
		)
	}
}

// persistEvidenceRows addresses each file again and inserts its record.
// Failures are per-file and never roll back the complaint.
func (s *Service) persistEvidenceRows(ctx context.Context, complaintID uuid.UUID, files []evidence.File) {
	for _, f := range files {
		address, err := s.archiver.AddressFile(ctx, f)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to address evidence file",
				"complaint_id", complaintID,
				"file", f.Name,
				"error", err,
			)
			continue
		}
		record := &evidence.Evidence{
			ID:          uuid.New(),
			ComplaintID: complaintID,
			FileName:    f.Name,
			MediaType:   f.MediaType,
			ByteSize:    int64(len(f.Bytes)),
			Address:     address,
			Verified:    false,
		}
		if err := s.evidenceStore.Create(ctx, record); err != nil {
			s.logger.ErrorContext(ctx, "failed to persist evidence record",
				"complaint_id", complaintID,
				"file", f.Name,
				"error", err,
			)
		}
	}
}

func (s *Service) createThread(ctx context.Context, complaintID uuid.UUID, language string) {
	if err := s.conversations.Create(ctx, complaintID, language); err != nil {
		s.logger.ErrorContext(ctx, "failed to create conversation thread",
			"complaint_id", complaintID,
			"error", err,
		)
	}
}

// UpdateStatus moves a complaint to the target status. The authoritative
// persist happens first; the public-ledger mirror follows best-effort and is
// never attributed to a status that failed to persist.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, target Status, actor Actor) (*Complaint, error) {
	ctx, span := s.tracer.Start(ctx, "complaint.UpdateStatus")
	defer span.End()

	if !ValidStatus(target) {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown status")
	}
	if !middleware.HasInvestigativeAuthority(actor.Role) {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller may not update complaint status")
	}

	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(c.Status, target) {
		return nil, dErrors.Newf(dErrors.CodeConflict,
			"illegal status transition %s -> %s", c.Status, target)
	}

	if err := s.store.UpdateStatus(ctx, id, c.Status, target); err != nil {
		return nil, err
	}
	s.metrics.IncStatusTransition(string(target))
	s.logger.InfoContext(ctx, "complaint status updated",
		"complaint_id", id,
		"from", c.Status,
		"to", target,
		"updated_by", actor.ID,
	)

	s.mirrorStatus(ctx, c.ComplaintNumber, target)
	if s.notifier != nil {
		s.notifier.Notify(context.WithoutCancel(ctx), c.ReporterID, notification.TypeStatusUpdated,
			"Complaint status updated",
			fmt.Sprintf("Complaint %s is now %s.", c.ComplaintNumber, target),
			"/complaints/"+c.ID.String(),
		)
	}

	c.Status = target
	return c, nil
}

// mirrorStatus dispatches the best-effort public-ledger status mirror.
// Status updates are not mirrored to the consortium ledger.
func (s *Service) mirrorStatus(ctx context.Context, complaintNumber string, target Status) {
	detached := context.WithoutCancel(ctx)
	s.mirrors.Add(1)
	go func() {
		defer s.mirrors.Done()
		callCtx, cancel := context.WithTimeout(detached, s.ledgerTimeout)
		defer cancel()

		if err := s.public.UpdateStatus(callCtx, complaintNumber, LedgerStatusCode(target)); err != nil {
			s.mirrorFailed(detached, outbox.LedgerPublic, outbox.OpUpdateStatus, complaintNumber, err)
		}
	}()
}

// Assign sets the investigating officer. The complaint must be active.
func (s *Service) Assign(ctx context.Context, id uuid.UUID, officerID uuid.UUID, actor Actor) error {
	if !middleware.HasInvestigativeAuthority(actor.Role) {
		return dErrors.New(dErrors.CodeForbidden, "caller may not assign complaints")
	}
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if IsTerminal(c.Status) {
		return dErrors.New(dErrors.CodeConflict, "complaint is closed")
	}
	if err := s.store.Assign(ctx, id, officerID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "complaint assigned",
		"complaint_id", id,
		"officer_id", officerID,
		"assigned_by", actor.ID,
	)
	if s.notifier != nil {
		s.notifier.Notify(context.WithoutCancel(ctx), officerID, notification.TypeCaseAssigned,
			"Case assigned",
			fmt.Sprintf("Complaint %s has been assigned to you.", c.ComplaintNumber),
			"/complaints/"+c.ID.String(),
		)
	}
	return nil
}

// Get returns a complaint. Citizens may only read their own.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor Actor) (*Complaint, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !middleware.HasInvestigativeAuthority(actor.Role) && c.ReporterID != actor.ID {
		return nil, dErrors.New(dErrors.CodeForbidden, "complaint belongs to another reporter")
	}
	return c, nil
}

// ListByReporter returns the caller's own complaints.
func (s *Service) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]*Complaint, error) {
	return s.store.ListByReporter(ctx, reporterID)
}

// List returns the investigative queue view.
func (s *Service) List(ctx context.Context, filter Filter, actor Actor) ([]*Complaint, error) {
	if !middleware.HasInvestigativeAuthority(actor.Role) {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller may not list all complaints")
	}
	return s.store.List(ctx, filter)
}

// Close drains in-flight best-effort mirror tasks, bounded by ctx.
func (s *Service) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.mirrors.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits for all dispatched best-effort tasks; tests use it to observe
// mirror outcomes deterministically.
func (s *Service) Flush() {
	s.mirrors.Wait()
}
