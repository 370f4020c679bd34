package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/jobscout/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS saved_searches (
	id          UUID PRIMARY KEY,
	title       TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	filters     JSONB NOT NULL DEFAULT '{}',
	active      BOOLEAN NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_run_at TIMESTAMPTZ,
	last_total  INTEGER NOT NULL DEFAULT 0,
	new_jobs    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS saved_searches_active_idx ON saved_searches (created_at) WHERE active;
`

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: pgxpool.New: %w", ErrStorage, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: postgres ping: %w", ErrStorage, err)
	}
	return pool, nil
}

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps pool. Call Migrate once before use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the saved_searches table if it is missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: migrate: %w", ErrStorage, err)
	}
	return nil
}

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, in model.SavedSearch) (model.SavedSearch, error) {
	if err := in.Validate(); err != nil {
		return model.SavedSearch{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	filters, err := json.Marshal(in.Filters)
	if err != nil {
		return model.SavedSearch{}, fmt.Errorf("%w: encode filters: %w", ErrInvalid, err)
	}

	id := uuid.New()
	err = s.pool.QueryRow(ctx,
		`INSERT INTO saved_searches (id, title, location, filters)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		id.String(), in.Title, in.Location, filters,
	).Scan(&in.CreatedAt)
	if err != nil {
		return model.SavedSearch{}, fmt.Errorf("%w: insert: %w", ErrStorage, err)
	}

	in.ID = id.String()
	in.Active = true
	in.CreatedAt = in.CreatedAt.UTC()
	in.LastRunAt = nil
	in.LastTotal, in.NewJobs = 0, 0
	return in, nil
}

// ListActive implements Store.
func (s *PostgresStore) ListActive(ctx context.Context) ([]model.SavedSearch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, title, location, filters, active, created_at, last_run_at, last_total, new_jobs
		 FROM saved_searches
		 WHERE active
		 ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrStorage, err)
	}

	out, err := pgx.CollectRows(rows, scanSavedSearch)
	if err != nil {
		return nil, fmt.Errorf("%w: scan: %w", ErrStorage, err)
	}
	return out, nil
}

func scanSavedSearch(row pgx.CollectableRow) (model.SavedSearch, error) {
	var (
		s       model.SavedSearch
		filters []byte
	)
	if err := row.Scan(&s.ID, &s.Title, &s.Location, &filters, &s.Active, &s.CreatedAt, &s.LastRunAt, &s.LastTotal, &s.NewJobs); err != nil {
		return model.SavedSearch{}, err
	}
	if err := json.Unmarshal(filters, &s.Filters); err != nil {
		return model.SavedSearch{}, fmt.Errorf("decode filters: %w", err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	if s.LastRunAt != nil {
		t := s.LastRunAt.UTC()
		s.LastRunAt = &t
	}
	return s, nil
}

// RecordRun implements Store.
func (s *PostgresStore) RecordRun(ctx context.Context, id string, total, newJobs int, at time.Time) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE saved_searches SET last_run_at = $2, last_total = $3, new_jobs = $4 WHERE id = $1`,
		uid.String(), at.UTC(), total, newJobs,
	)
	if err != nil {
		return fmt.Errorf("%w: record run: %w", ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
