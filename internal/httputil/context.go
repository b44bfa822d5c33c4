package httputil

import (
	"context"
	"net/http"

	"starc/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	principalKey contextKey = "principal"
)

// WithPrincipal adds the authenticated caller to the request context
func WithPrincipal(r *http.Request, principal *models.Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalKey, principal)
	return r.WithContext(ctx)
}

// GetPrincipal retrieves the authenticated caller, or nil on public routes
func GetPrincipal(r *http.Request) *models.Principal {
	principal, _ := r.Context().Value(principalKey).(*models.Principal)
	return principal
}

// GetUserID retrieves the caller's user id, returns 0 if not authenticated
func GetUserID(r *http.Request) int64 {
	if principal := GetPrincipal(r); principal != nil {
		return principal.UserID
	}
	return 0
}
