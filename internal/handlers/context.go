package handlers

import (
	"context"

	"github.com/serroba/shortlink/internal/auth"
)

type (
	requestMetaKey struct{}
	userKey        struct{}
)

// RequestMeta holds HTTP request metadata for analytics and error messages.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
	URL       string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

// ContextWithUser attaches the authenticated user to context.
func ContextWithUser(ctx context.Context, user *auth.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *auth.User {
	if v, ok := ctx.Value(userKey{}).(*auth.User); ok {
		return v
	}

	return nil
}
