package middleware

import (
	"context"

	"github.com/AliiiBenn/mini-auth/internal/domain"
)

type contextKey string

const (
	projectContextKey contextKey = "project"
	userContextKey    contextKey = "user_id"
)

// WithProject injects the resolved tenant project into the context.
func WithProject(ctx context.Context, project *domain.Project) context.Context {
	return context.WithValue(ctx, projectContextKey, project)
}

// ProjectFromContext returns the tenant project from the context, or nil.
func ProjectFromContext(ctx context.Context) *domain.Project {
	p, _ := ctx.Value(projectContextKey).(*domain.Project)
	return p
}

// WithAuth injects the authenticated user ID into the context.
func WithAuth(ctx context.Context, userID domain.UserID) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}

// AuthFromContext returns the authenticated user ID from the context.
func AuthFromContext(ctx context.Context) (domain.UserID, bool) {
	id, ok := ctx.Value(userContextKey).(domain.UserID)
	return id, ok
}
