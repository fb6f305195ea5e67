package testutil

import (
	"context"
	"net/http"

	"cybercell/internal/platform/middleware"
)

// WithAuth adds a user ID and role to the request context, simulating what
// the auth middleware does for authenticated requests. Handlers under test
// can then skip token issuance entirely.
func WithAuth(req *http.Request, userID, role string) *http.Request {
	ctx := req.Context()
	if userID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	}
	if role != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyRole, role)
	}
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), key, value))
}
