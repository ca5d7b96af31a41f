package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Session is the result of a successful signup or signin.
type Session struct {
	User        *User
	AccessToken string
}

// Service implements account signup and signin.
type Service struct {
	users  Repository
	hasher *PasswordHasher
	tokens *TokenIssuer
	now    func() time.Time
}

// NewService creates a new auth service.
func NewService(users Repository, hasher *PasswordHasher, tokens *TokenIssuer) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

// Signup registers a new account and issues a token for it.
func (s *Service) Signup(ctx context.Context, email, username, password string) (*Session, error) {
	if err := s.ensureAvailable(ctx, email, username); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Email:          email,
		Username:       username,
		HashedPassword: hashed,
		IsActive:       true,
		CreatedAt:      s.now().UTC(),
	}

	// The store's unique constraints still catch a concurrent signup.
	if err = s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.session(user)
}

// Signin checks credentials and issues a token.
func (s *Service) Signin(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	return s.session(user)
}

// Authenticate resolves a bearer token to an active user.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	id, ok := s.tokens.Verify(token)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	return user, nil
}

// Deactivate disables the account. Its tokens stop authenticating and signin is refused.
func (s *Service) Deactivate(ctx context.Context, userID int64) error {
	if err := s.users.SetActive(ctx, userID, false); err != nil {
		return fmt.Errorf("deactivate user %d: %w", userID, err)
	}

	return nil
}

func (s *Service) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	return nil
}

func (s *Service) session(user *User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &Session{User: user, AccessToken: token}, nil
}
