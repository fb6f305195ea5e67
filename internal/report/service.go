package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"cybercell/internal/complaint"
	"cybercell/internal/identifier"
	"cybercell/internal/ledger"
	"cybercell/internal/ledger/outbox"
	"cybercell/internal/notification"
	"cybercell/internal/platform/metrics"
	"cybercell/internal/platform/middleware"
	dErrors "cybercell/pkg/domain-errors"
	pstrings "cybercell/pkg/platform/strings"
)

const numberAttempts = 3

// ComplaintStore is the slice of the complaint store the filing workflow
// needs: the current row and the atomic advance to report_filed.
type ComplaintStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*complaint.Complaint, error)
	MarkReportFiled(ctx context.Context, id uuid.UUID, from complaint.Status, reportNumber string) error
}

// Notifier records in-app notifications, best-effort.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ notification.Type, title, message, link string)
}

// Service runs the report filing workflow. Unlike complaint creation, the
// public-ledger anchor is awaited synchronously here: filing is rare and the
// caller is an investigator who wants to know the anchor landed. A failed
// anchor is still not fatal; it is logged and queued for replay.
type Service struct {
	reports       Store
	complaints    ComplaintStore
	generator     *identifier.Generator
	public        ledger.PublicNotifier
	notifier      Notifier
	retryQueue    outbox.Outbox
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	region        string
	ledgerTimeout time.Duration
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

// WithRegion overrides the region prefix on generated report numbers.
func WithRegion(region string) Option {
	return func(s *Service) { s.region = region }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(
	reports Store,
	complaints ComplaintStore,
	generator *identifier.Generator,
	public ledger.PublicNotifier,
	opts ...Option,
) *Service {
	s := &Service{
		reports:       reports,
		complaints:    complaints,
		generator:     generator,
		public:        public,
		retryQueue:    outbox.NewInMemory(),
		logger:        slog.Default(),
		tracer:        otel.Tracer("cybercell/report"),
		region:        "JH",
		ledgerTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FileInput is a validated filing request.
type FileInput struct {
	ComplaintID uuid.UUID
	StationCode string
	Sections    []string
	Remarks     string
}

// Actor identifies the filer for authority checks.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// File raises an incident report for the complaint and advances it to
// report_filed. Exactly one report may ever exist per complaint: the store's
// uniqueness on complaint_id makes concurrent filings lose cleanly, and a
// duplicate filing never disturbs the report that won.
func (s *Service) File(ctx context.Context, in FileInput, actor Actor) (*IncidentReport, error) {
	ctx, span := s.tracer.Start(ctx, "report.File")
	defer span.End()

	if !middleware.HasInvestigativeAuthority(actor.Role) {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller may not file incident reports")
	}

	c, err := s.complaints.FindByID(ctx, in.ComplaintID)
	if err != nil {
		return nil, err
	}
	if !complaint.CanFileReport(c.Status) {
		return nil, dErrors.Newf(dErrors.CodeConflict,
			"cannot file a report for a complaint in status %s", c.Status)
	}

	r, err := s.persistNew(ctx, in, actor)
	if err != nil {
		return nil, err
	}

	if err := s.complaints.MarkReportFiled(ctx, c.ID, c.Status, r.ReportNumber); err != nil {
		// The complaint did not advance, most likely a concurrent status
		// change. Remove the report row so the failed filing leaves no
		// state behind; otherwise the one-report-per-complaint constraint
		// would block the complaint from ever being filed.
		if delErr := s.reports.Delete(context.WithoutCancel(ctx), r.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned incident report",
				"report_id", r.ID,
				"report_number", r.ReportNumber,
				"error", delErr,
			)
		}
		return nil, err
	}
	s.metrics.IncReportsFiled()
	s.metrics.IncStatusTransition(string(complaint.StatusReportFiled))
	s.logger.InfoContext(ctx, "incident report filed",
		"complaint_id", c.ID,
		"report_number", r.ReportNumber,
		"filed_by", actor.ID,
	)

	s.anchorReport(ctx, c.ComplaintNumber, r.ReportNumber)
	if s.notifier != nil {
		s.notifier.Notify(ctx, c.ReporterID, notification.TypeReportFiled,
			"Incident report filed",
			"Report "+r.ReportNumber+" has been filed for complaint "+c.ComplaintNumber+".",
			"/complaints/"+c.ID.String(),
		)
	}
	return r, nil
}

func (s *Service) persistNew(ctx context.Context, in FileInput, actor Actor) (*IncidentReport, error) {
	for attempt := 0; attempt < numberAttempts; attempt++ {
		r := &IncidentReport{
			ID:           uuid.New(),
			ReportNumber: s.generator.ReportNumber(s.region, in.StationCode),
			ComplaintID:  in.ComplaintID,
			StationCode:  in.StationCode,
			Sections:     pstrings.DedupeAndTrim(in.Sections),
			Remarks:      in.Remarks,
			FiledBy:      actor.ID,
		}
		err := s.reports.Create(ctx, r)
		if err == nil {
			return r, nil
		}
		if errors.Is(err, ErrAlreadyFiled) {
			return nil, err
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist incident report")
		}
		s.logger.WarnContext(ctx, "report number collision, regenerating",
			"report_number", r.ReportNumber,
			"attempt", attempt+1,
		)
	}
	return nil, dErrors.New(dErrors.CodeConflict, "could not allocate a unique report number")
}

// anchorReport mirrors the filing onto the public ledger, awaited within the
// request but never fatal to it.
func (s *Service) anchorReport(ctx context.Context, complaintNumber, reportNumber string) {
	callCtx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()

	if err := s.public.FileReport(callCtx, complaintNumber, reportNumber); err != nil {
		s.logger.ErrorContext(ctx, "report ledger anchor failed",
			"complaint_number", complaintNumber,
			"report_number", reportNumber,
			"error", err,
		)
		s.metrics.IncMirrorFailure(outbox.LedgerPublic, outbox.OpFileReport)
		if qErr := s.retryQueue.Enqueue(ctx, outbox.Entry{
			Ledger:          outbox.LedgerPublic,
			Op:              outbox.OpFileReport,
			ComplaintNumber: complaintNumber,
		}); qErr != nil {
			s.logger.ErrorContext(ctx, "failed to enqueue anchor retry",
				"report_number", reportNumber,
				"error", qErr,
			)
		}
	}
}

// GetByNumber returns the report with the given report number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*IncidentReport, error) {
	return s.reports.FindByNumber(ctx, number)
}

// GetByComplaint returns the report filed for the complaint, if any.
func (s *Service) GetByComplaint(ctx context.Context, complaintID uuid.UUID) (*IncidentReport, error) {
	return s.reports.FindByComplaint(ctx, complaintID)
}
