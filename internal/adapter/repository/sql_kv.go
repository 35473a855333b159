package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect selects placeholder syntax for the SQL backends.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// SQLKV stores values in the resume_kv table (see migration package).
type SQLKV struct {
	db      *sql.DB
	dialect Dialect
}

var _ KV = (*SQLKV)(nil)

func NewSQLKV(db *sql.DB, dialect Dialect) *SQLKV {
	return &SQLKV{db: db, dialect: dialect}
}

// rebind rewrites $N placeholders to ? for SQLite.
func (d Dialect) rebind(query string) string {
	if d == Postgres {
		return query
	}
	out := make([]byte, 0, len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '1' && query[i+1] <= '9' {
			out = append(out, '?')
			i++
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

func (r *SQLKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, r.dialect.rebind(`SELECT value FROM resume_kv WHERE key = $1`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select kv %q: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLKV) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, r.dialect.rebind(`INSERT INTO resume_kv (key, value, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`), key, value)
	if err != nil {
		return fmt.Errorf("upsert kv %q: %w", key, err)
	}
	return nil
}

func (r *SQLKV) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.rebind(`DELETE FROM resume_kv WHERE key = $1`), key); err != nil {
		return fmt.Errorf("delete kv %q: %w", key, err)
	}
	return nil
}
