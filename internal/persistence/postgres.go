package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/utafrali/EcommerceGo/clientstate/pkg/errors"
)

// PgxQuerier is the subset of *pgxpool.Pool the Postgres provider uses.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Postgres implements Provider on a single client_state table.
type Postgres struct {
	db PgxQuerier
}

// NewPostgres creates a PostgreSQL-backed provider.
func NewPostgres(db PgxQuerier) *Postgres {
	return &Postgres{db: db}
}

// Load retrieves the blob stored under key.
func (p *Postgres) Load(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT blob FROM client_state WHERE storage_key = $1`

	var blob []byte
	if err := p.db.QueryRow(ctx, query, key).Scan(&blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("state blob", key)
		}
		return nil, fmt.Errorf("select client state: %w", err)
	}
	return blob, nil
}

// Save upserts the blob stored under key.
func (p *Postgres) Save(ctx context.Context, key string, blob []byte) error {
	query := `
		INSERT INTO client_state (storage_key, blob, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (storage_key) DO UPDATE
		SET blob = EXCLUDED.blob, updated_at = NOW()`

	if _, err := p.db.Exec(ctx, query, key, blob); err != nil {
		return fmt.Errorf("upsert client state: %w", err)
	}
	return nil
}

// Ping checks connectivity, for readiness probes.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
