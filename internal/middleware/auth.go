package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/auth"
	"github.com/serroba/shortlink/internal/handlers"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.User, error)
}

// Authenticate is a middleware that attaches the user behind a valid bearer token to the request context.
// Requests without a usable token continue anonymously; handlers that need a user reject them.
func Authenticate(_ huma.API, authenticator Authenticator, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token, ok := bearerToken(ctx.Header("Authorization"))
		if !ok {
			next(ctx)

			return
		}

		user, err := authenticator.Authenticate(ctx.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidCredentials) && !errors.Is(err, auth.ErrAccountDeactivated) {
				logger.Error("failed to authenticate request", zap.Error(err))
			}

			next(ctx)

			return
		}

		next(huma.WithContext(ctx, handlers.ContextWithUser(ctx.Context(), user)))
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}
