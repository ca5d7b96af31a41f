package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/auth"
	"go.uber.org/zap"
)

// AuthHandler handles account operations.
type AuthHandler struct {
	service *auth.Service
	logger  *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

func (h *AuthHandler) Signup(ctx context.Context, req *SignupRequest) (*SessionResponse, error) {
	session, err := h.service.Signup(ctx, req.Body.Email, req.Body.Username, req.Body.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			return nil, huma.Error400BadRequest("Email already registered")
		case errors.Is(err, auth.ErrUsernameTaken):
			return nil, huma.Error400BadRequest("Username already taken")
		default:
			h.logger.Error("signup failed", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to create account")
		}
	}

	return toSessionResponse(session), nil
}

func (h *AuthHandler) Signin(ctx context.Context, req *SigninRequest) (*SessionResponse, error) {
	session, err := h.service.Signin(ctx, req.Body.Email, req.Body.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return nil, huma.Error401Unauthorized("Invalid email or password")
		case errors.Is(err, auth.ErrAccountDeactivated):
			return nil, huma.Error403Forbidden("Account is deactivated")
		default:
			h.logger.Error("signin failed", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to sign in")
		}
	}

	return toSessionResponse(session), nil
}

// Me returns the account behind the bearer token.
func (h *AuthHandler) Me(ctx context.Context, _ *struct{}) (*MeResponse, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, errNotAuthenticated()
	}

	return &MeResponse{Body: UserInfo{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}}, nil
}

// DeactivateMe disables the account behind the bearer token.
func (h *AuthHandler) DeactivateMe(ctx context.Context, _ *struct{}) (*DeactivateAccountResponse, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, errNotAuthenticated()
	}

	if err := h.service.Deactivate(ctx, user.ID); err != nil {
		h.logger.Error("deactivate failed", zap.Int64("user_id", user.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to deactivate account")
	}

	resp := &DeactivateAccountResponse{}
	resp.Body.Detail = "Account deactivated"

	return resp, nil
}

func errNotAuthenticated() error {
	return huma.Error401Unauthorized("Not authenticated")
}

func toSessionResponse(session *auth.Session) *SessionResponse {
	resp := &SessionResponse{}
	resp.Body.ID = session.User.ID
	resp.Body.Email = session.User.Email
	resp.Body.Username = session.User.Username
	resp.Body.AccessToken = session.AccessToken

	return resp
}
