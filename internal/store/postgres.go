package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists documents in a single key→JSONB table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore ensures the documents table exists and returns the store.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	_, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS assistant_documents (
		   key        TEXT PRIMARY KEY,
		   doc        JSONB NOT NULL,
		   updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		 )`)
	if err != nil {
		return nil, fmt.Errorf("ensure assistant_documents: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Save upserts the document for key; the row is replaced, not merged.
func (s *PostgresStore) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO assistant_documents (key, doc, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (key) DO UPDATE
		 SET doc = EXCLUDED.doc, updated_at = NOW()`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}

// Load reads the document for key into v, returning ErrNotFound when no
// row exists.
func (s *PostgresStore) Load(ctx context.Context, key string, v any) error {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM assistant_documents WHERE key = $1`, key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select %q: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %q: %w", key, err)
	}
	return nil
}
