package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// rowQuerier is the subset of *pgxpool.Pool used by the credential loader.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgxCredentialRepository reads the credential table from PostgreSQL.
type PgxCredentialRepository struct {
	pool rowQuerier
}

// NewCredentialRepository creates a new PgxCredentialRepository.
// pool is normally a *pgxpool.Pool.
func NewCredentialRepository(pool rowQuerier) *PgxCredentialRepository {
	return &PgxCredentialRepository{pool: pool}
}

// Load reads every row once and returns an immutable in-memory store.
func (r *PgxCredentialRepository) Load(ctx context.Context) (*MapCredentialStore, error) {
	query := `SELECT username, password_hash FROM credentials`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var username, hash string
		if err := rows.Scan(&username, &hash); err != nil {
			return nil, fmt.Errorf("scan credential row: %w", err)
		}
		entries[username] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return NewMapCredentialStore(entries), nil
}
