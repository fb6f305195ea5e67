// Package handler exposes per-user notifications over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cybercell/internal/notification"
	"cybercell/internal/platform/metrics"
	"cybercell/internal/platform/middleware"
	dErrors "cybercell/pkg/domain-errors"
	"cybercell/pkg/platform/httputil"
)

// Service defines the notification operations the HTTP layer needs.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// Handler handles notification endpoints.
type Handler struct {
	logger        *slog.Logger
	notifications Service
	metrics       *metrics.Metrics
	jwtValidator  middleware.JWTValidator
}

// New creates a new notification Handler.
func New(
	notifications Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
) *Handler {
	return &Handler{
		logger:        logger,
		notifications: notifications,
		metrics:       m,
		jwtValidator:  jwtValidator,
	}
}

// Register registers the notification routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.LatencyMiddleware(h.metrics))
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	router.Get("/notifications", h.handleList)
	router.Post("/notifications/{id}/read", h.handleMarkRead)
	router.Post("/notifications/read-all", h.handleMarkAllRead)

	r.Mount("/", router)
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := callerID(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	out, err := h.notifications.ListForUser(ctx, userID, unreadOnly)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := make([]notificationResponse, 0, len(out))
	for _, n := range out {
		resp = append(resp, notificationResponse{
			ID:        n.ID.String(),
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Link:      n.Link,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"notifications": resp})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := callerID(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "notification id must be a UUID"))
		return
	}

	if err := h.notifications.MarkRead(ctx, id, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := callerID(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.notifications.MarkAllRead(ctx, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
