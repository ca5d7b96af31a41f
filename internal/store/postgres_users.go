package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/auth"
)

const (
	usersEmailConstraint    = "users_email_key"
	usersUsernameConstraint = "users_username_key"

	userColumns = `id, email, username, hashed_password, is_active, created_at`
)

// PostgresUserStore is a PostgreSQL implementation of auth.Repository.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore creates a new PostgreSQL-backed user store.
func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

func (p *PostgresUserStore) Create(ctx context.Context, user *auth.User) error {
	query := `
		INSERT INTO users (email, username, hashed_password, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query,
		user.Email,
		user.Username,
		user.HashedPassword,
		user.IsActive,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if pgErr, ok := uniqueViolation(err); ok {
			switch pgErr.ConstraintName {
			case usersUsernameConstraint:
				return auth.ErrUsernameTaken
			case usersEmailConstraint:
				return auth.ErrEmailTaken
			}

			return auth.ErrEmailTaken
		}

		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (p *PostgresUserStore) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	return p.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (p *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return p.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (p *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return p.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (p *PostgresUserStore) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrNotFound
	}

	return nil
}

func (p *PostgresUserStore) getOne(ctx context.Context, query string, arg any) (*auth.User, error) {
	var user auth.User

	err := p.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.HashedPassword,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNotFound
		}

		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}
