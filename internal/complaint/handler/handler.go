// Package handler exposes the complaint lifecycle over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cybercell/internal/complaint"
	"cybercell/internal/evidence"
	"cybercell/internal/platform/metrics"
	"cybercell/internal/platform/middleware"
	"cybercell/internal/severity"
	"cybercell/internal/validation"
	dErrors "cybercell/pkg/domain-errors"
	"cybercell/pkg/platform/httputil"
)

// Service defines the complaint operations the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, in complaint.CreateInput) (*complaint.Complaint, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, target complaint.Status, actor complaint.Actor) (*complaint.Complaint, error)
	Assign(ctx context.Context, id uuid.UUID, officerID uuid.UUID, actor complaint.Actor) error
	Get(ctx context.Context, id uuid.UUID, actor complaint.Actor) (*complaint.Complaint, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]*complaint.Complaint, error)
	List(ctx context.Context, filter complaint.Filter, actor complaint.Actor) ([]*complaint.Complaint, error)
}

// Handler handles complaint endpoints.
type Handler struct {
	logger         *slog.Logger
	complaints     Service
	metrics        *metrics.Metrics
	jwtValidator   middleware.JWTValidator
	maxUploadBytes int64
}

// New creates a new complaint Handler.
func New(
	complaints Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
	maxUploadBytes int64,
) *Handler {
	return &Handler{
		logger:         logger,
		complaints:     complaints,
		metrics:        m,
		jwtValidator:   jwtValidator,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register registers the complaint routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.LatencyMiddleware(h.metrics))
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	router.Post("/complaints", h.handleCreate)
	router.Get("/complaints", h.handleList)
	router.Get("/complaints/{id}", h.handleGet)
	router.Patch("/complaints/{id}/status", h.handleUpdateStatus)
	router.Post("/complaints/{id}/assign", h.handleAssign)

	r.Mount("/", router)
}

// complaintResponse is the wire shape of a complaint.
type complaintResponse struct {
	ID              string              `json:"id"`
	ComplaintNumber string              `json:"complaint_number"`
	ReporterID      string              `json:"reporter_id"`
	Category        string              `json:"category"`
	Description     string              `json:"description"`
	Amount          *int64              `json:"amount,omitempty"`
	Location        complaint.Location  `json:"location"`
	Status          string              `json:"status"`
	SeverityScore   int                 `json:"severity_score"`
	SeverityLevel   string              `json:"severity_level"`
	Priority        int                 `json:"priority"`
	EvidenceAddress string              `json:"evidence_address,omitempty"`
	PublicTxRef     *string             `json:"public_tx_ref,omitempty"`
	ConsortiumRef   *string             `json:"consortium_ref,omitempty"`
	AssignedTo      *string             `json:"assigned_to,omitempty"`
	ReportNumber    *string             `json:"report_number,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toResponse(c *complaint.Complaint) complaintResponse {
	resp := complaintResponse{
		ID:              c.ID.String(),
		ComplaintNumber: c.ComplaintNumber,
		ReporterID:      c.ReporterID.String(),
		Category:        string(c.Category),
		Description:     c.Description,
		Amount:          c.Amount,
		Location:        c.Location,
		Status:          string(c.Status),
		SeverityScore:   c.SeverityScore,
		SeverityLevel:   severity.Level(c.SeverityScore),
		Priority:        severity.Priority(c.SeverityScore),
		EvidenceAddress: c.EvidenceAddress,
		PublicTxRef:     c.PublicTxRef,
		ConsortiumRef:   c.ConsortiumRef,
		ReportNumber:    c.ReportNumber,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.AssignedTo != nil {
		s := c.AssignedTo.String()
		resp.AssignedTo = &s
	}
	return resp
}

// handleCreate accepts a multipart submission: a "payload" JSON part plus
// zero or more "files" parts, or a bare JSON body when no files are attached.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reporterID, err := callerID(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, files, err := h.decodeCreate(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid create complaint request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	if err := validation.ValidateCreateComplaint(req, files); err != nil {
		httputil.WriteError(w, err)
		return
	}

	language := req.Language
	if language == "" {
		language = "hi"
	}
	c, err := h.complaints.Create(ctx, complaint.CreateInput{
		ReporterID:  reporterID,
		Category:    complaint.Category(req.Category),
		Description: req.Description,
		Amount:      req.Amount,
		Location: complaint.Location{
			State:    req.Location.State,
			District: req.Location.District,
			Pincode:  req.Location.Pincode,
			Address:  req.Location.Address,
		},
		Ongoing:            req.Ongoing,
		HoursSinceIncident: req.HoursSinceIncident,
		Language:           language,
		Files:              files,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create complaint",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) decodeCreate(r *http.Request) (validation.CreateComplaintRequest, []evidence.File, error) {
	var req validation.CreateComplaintRequest

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
		}
		return req, nil, nil
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return req, nil, dErrors.New(dErrors.CodeBadRequest, "invalid multipart body")
	}
	payload := r.FormValue("payload")
	if payload == "" {
		return req, nil, dErrors.New(dErrors.CodeBadRequest, "payload part is required")
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return req, nil, dErrors.New(dErrors.CodeBadRequest, "invalid payload part")
	}

	var files []evidence.File
	for _, header := range r.MultipartForm.File["files"] {
		f, err := readUpload(header)
		if err != nil {
			return req, nil, err
		}
		files = append(files, f)
	}
	return req, files, nil
}

func readUpload(header *multipart.FileHeader) (evidence.File, error) {
	part, err := header.Open()
	if err != nil {
		return evidence.File{}, dErrors.New(dErrors.CodeBadRequest, "unreadable file part")
	}
	defer part.Close()
	data, err := io.ReadAll(part)
	if err != nil {
		return evidence.File{}, dErrors.New(dErrors.CodeBadRequest, "unreadable file part")
	}
	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}
	return evidence.File{
		Name:      header.Filename,
		MediaType: mediaType,
		Bytes:     data,
	}, nil
}

// handleList returns the caller's own complaints for citizens, or the
// filtered queue view for investigative roles.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var (
		out     []*complaint.Complaint
		listErr error
	)
	if middleware.HasInvestigativeAuthority(actor.Role) {
		filter, err := parseFilter(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		out, listErr = h.complaints.List(ctx, filter, actor)
	} else {
		out, listErr = h.complaints.ListByReporter(ctx, actor.ID)
	}
	if listErr != nil {
		httputil.WriteError(w, listErr)
		return
	}

	resp := make([]complaintResponse, 0, len(out))
	for _, c := range out {
		resp = append(resp, toResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"complaints": resp})
}

func parseFilter(r *http.Request) (complaint.Filter, error) {
	var filter complaint.Filter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := complaint.Status(raw)
		if !complaint.ValidStatus(status) {
			return filter, dErrors.Newf(dErrors.CodeValidation, "unknown status %q", raw)
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("min_severity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 100 {
			return filter, dErrors.New(dErrors.CodeValidation, "min_severity must be 0-100")
		}
		filter.MinSeverity = &n
	}
	if raw := r.URL.Query().Get("assigned_to"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeValidation, "assigned_to must be a UUID")
		}
		filter.AssignedTo = &id
	}
	return filter, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.complaints.Get(ctx, id, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req validation.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validation.ValidateUpdateStatus(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.complaints.UpdateStatus(ctx, id, complaint.Status(req.Status), actor)
	if err != nil {
		h.logger.WarnContext(ctx, "status update rejected",
			"request_id", middleware.GetRequestID(ctx),
			"complaint_id", id,
			"target", req.Status,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(c))
}

type assignRequest struct {
	OfficerID string `json:"officer_id"`
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	officerID, err := uuid.Parse(req.OfficerID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "officer_id must be a UUID"))
		return
	}

	if err := h.complaints.Assign(ctx, id, officerID, actor); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "complaint id must be a UUID")
	}
	return id, nil
}

func callerID(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.GetUserID(ctx)
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid subject claim")
	}
	return id, nil
}

func actorFromContext(ctx context.Context) (complaint.Actor, error) {
	id, err := callerID(ctx)
	if err != nil {
		return complaint.Actor{}, err
	}
	return complaint.Actor{ID: id, Role: middleware.GetRole(ctx)}, nil
}
