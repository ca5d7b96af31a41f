package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
)

const uniqueViolationCode = "23505"

const urlColumns = `id, url_key, secret_key, target_url, is_active, clicks, is_guest, user_id, created_at`

// PostgresStore is a PostgreSQL implementation of shortener.Repository, shortener.VisitRecorder
// and shortener.VisitLister.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Create(ctx context.Context, shortURL *shortener.ShortURL) error {
	query := `
		INSERT INTO urls (url_key, secret_key, target_url, is_active, clicks, is_guest, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query,
		string(shortURL.Key),
		string(shortURL.SecretKey),
		shortURL.TargetURL,
		shortURL.IsActive,
		shortURL.Clicks,
		shortURL.IsGuest,
		shortURL.UserID,
		shortURL.CreatedAt,
	).Scan(&shortURL.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return shortener.ErrConflict
		}

		return fmt.Errorf("insert url: %w", err)
	}

	return nil
}

func (p *PostgresStore) KeyExists(ctx context.Context, key shortener.Key) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM urls WHERE url_key = $1)`, string(key)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check url key: %w", err)
	}

	return exists, nil
}

func (p *PostgresStore) GetActiveByKey(ctx context.Context, key shortener.Key) (*shortener.ShortURL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls WHERE url_key = $1 AND is_active`

	return p.getOne(ctx, query, string(key))
}

func (p *PostgresStore) GetBySecretKey(ctx context.Context, secret shortener.SecretKey) (*shortener.ShortURL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls WHERE secret_key = $1`

	return p.getOne(ctx, query, string(secret))
}

func (p *PostgresStore) ListByOwner(ctx context.Context, userID int64) ([]*shortener.ShortURL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls WHERE user_id = $1 ORDER BY id DESC`

	rows, err := p.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list urls: %w", err)
	}
	defer rows.Close()

	owned := make([]*shortener.ShortURL, 0)

	for rows.Next() {
		url, err := scanURL(rows)
		if err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}

		owned = append(owned, url)
	}

	return owned, rows.Err()
}

func (p *PostgresStore) Deactivate(ctx context.Context, secret shortener.SecretKey) error {
	tag, err := p.pool.Exec(ctx, `UPDATE urls SET is_active = FALSE WHERE secret_key = $1`, string(secret))
	if err != nil {
		return fmt.Errorf("deactivate url: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// RecordVisit inserts a visitor row and bumps the click counter in one transaction.
func (p *PostgresStore) RecordVisit(ctx context.Context, visit *shortener.Visit) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		var urlID int64

		err := tx.QueryRow(ctx,
			`UPDATE urls SET clicks = clicks + 1 WHERE url_key = $1 RETURNING id`,
			string(visit.Key),
		).Scan(&urlID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shortener.ErrNotFound
			}

			return fmt.Errorf("count click: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO visitors (url_id, ip_address, user_agent, visited_at) VALUES ($1, $2, $3, $4)`,
			urlID, visit.IPAddress, visit.UserAgent, visit.VisitedAt,
		)
		if err != nil {
			return fmt.Errorf("insert visitor: %w", err)
		}

		return nil
	})
}

func (p *PostgresStore) ListVisits(ctx context.Context, key shortener.Key) ([]shortener.Visit, error) {
	var urlID int64

	err := p.pool.QueryRow(ctx, `SELECT id FROM urls WHERE url_key = $1`, string(key)).Scan(&urlID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("get url: %w", err)
	}

	rows, err := p.pool.Query(ctx,
		`SELECT ip_address, user_agent, visited_at FROM visitors WHERE url_id = $1 ORDER BY id`,
		urlID,
	)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}

	visits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (shortener.Visit, error) {
		visit := shortener.Visit{Key: key}
		err := row.Scan(&visit.IPAddress, &visit.UserAgent, &visit.VisitedAt)

		return visit, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan visitors: %w", err)
	}

	return visits, nil
}

func (p *PostgresStore) getOne(ctx context.Context, query string, arg string) (*shortener.ShortURL, error) {
	url, err := scanURL(p.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("get url: %w", err)
	}

	return url, nil
}

func scanURL(row pgx.Row) (*shortener.ShortURL, error) {
	var (
		url       shortener.ShortURL
		key       string
		secretKey string
	)

	err := row.Scan(
		&url.ID,
		&key,
		&secretKey,
		&url.TargetURL,
		&url.IsActive,
		&url.Clicks,
		&url.IsGuest,
		&url.UserID,
		&url.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	url.Key = shortener.Key(key)
	url.SecretKey = shortener.SecretKey(secretKey)

	return &url, nil
}

func uniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return pgErr, true
	}

	return nil, false
}

func isUniqueViolation(err error) bool {
	_, ok := uniqueViolation(err)

	return ok
}
