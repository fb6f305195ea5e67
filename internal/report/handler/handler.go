// Package handler exposes incident report filing over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cybercell/internal/platform/metrics"
	"cybercell/internal/platform/middleware"
	"cybercell/internal/report"
	"cybercell/internal/validation"
	dErrors "cybercell/pkg/domain-errors"
	"cybercell/pkg/platform/httputil"
)

// Service defines the report operations the HTTP layer needs.
type Service interface {
	File(ctx context.Context, in report.FileInput, actor report.Actor) (*report.IncidentReport, error)
	GetByNumber(ctx context.Context, number string) (*report.IncidentReport, error)
	GetByComplaint(ctx context.Context, complaintID uuid.UUID) (*report.IncidentReport, error)
}

// Handler handles incident report endpoints.
type Handler struct {
	logger       *slog.Logger
	reports      Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new report Handler.
func New(
	reports Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
) *Handler {
	return &Handler{
		logger:       logger,
		reports:      reports,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the report routes with the chi router. Report numbers
// contain slashes, so lookups go through a query parameter rather than a
// path segment.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.LatencyMiddleware(h.metrics))
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	router.Post("/reports", h.handleFile)
	router.Get("/reports", h.handleGetByNumber)
	router.Get("/complaints/{id}/report", h.handleGetByComplaint)

	r.Mount("/", router)
}

type reportResponse struct {
	ID           string    `json:"id"`
	ReportNumber string    `json:"report_number"`
	ComplaintID  string    `json:"complaint_id"`
	StationCode  string    `json:"station_code"`
	Sections     []string  `json:"sections,omitempty"`
	Remarks      string    `json:"remarks,omitempty"`
	FiledBy      string    `json:"filed_by"`
	FiledAt      time.Time `json:"filed_at"`
}

func toResponse(r *report.IncidentReport) reportResponse {
	return reportResponse{
		ID:           r.ID.String(),
		ReportNumber: r.ReportNumber,
		ComplaintID:  r.ComplaintID.String(),
		StationCode:  r.StationCode,
		Sections:     r.Sections,
		Remarks:      r.Remarks,
		FiledBy:      r.FiledBy.String(),
		FiledAt:      r.FiledAt,
	}
}

func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req validation.FileReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validation.ValidateFileReport(req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	complaintID, err := uuid.Parse(req.ComplaintID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "complaint_id must be a UUID"))
		return
	}

	filed, err := h.reports.File(ctx, report.FileInput{
		ComplaintID: complaintID,
		StationCode: req.StationCode,
		Sections:    req.Sections,
		Remarks:     req.Remarks,
	}, actor)
	if err != nil {
		h.logger.WarnContext(ctx, "report filing rejected",
			"request_id", middleware.GetRequestID(ctx),
			"complaint_id", req.ComplaintID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toResponse(filed))
}

func (h *Handler) handleGetByNumber(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("number")
	if number == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "number query parameter is required"))
		return
	}
	filed, err := h.reports.GetByNumber(r.Context(), number)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(filed))
}

func (h *Handler) handleGetByComplaint(w http.ResponseWriter, r *http.Request) {
	complaintID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "complaint id must be a UUID"))
		return
	}
	filed, err := h.reports.GetByComplaint(r.Context(), complaintID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(filed))
}

func actorFromContext(ctx context.Context) (report.Actor, error) {
	raw := middleware.GetUserID(ctx)
	if raw == "" {
		return report.Actor{}, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return report.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid subject claim")
	}
	return report.Actor{ID: id, Role: middleware.GetRole(ctx)}, nil
}
