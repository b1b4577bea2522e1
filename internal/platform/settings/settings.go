// Package settings stores global operational configuration as key-value rows,
// editable at runtime without a redeploy. The queue's wait estimation reads
// avg_visit_minutes from here.
package settings

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Well-known setting keys.
const (
	KeyAvgVisitMinutes = "avg_visit_minutes"
)

// Store provides access to global settings.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type storePG struct {
	pool *pgxpool.Pool
}

// NewStore returns a Postgres-backed settings store.
func NewStore(pool *pgxpool.Pool) Store {
	return &storePG{pool: pool}
}

func (s *storePG) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM app_setting WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *storePG) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO app_setting (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

// Service wraps a Store with typed, defaulted accessors. A missing or
// malformed row falls back to the supplied default so readers never fail on
// configuration gaps.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetInt returns the setting as a positive integer, or def when the key is
// absent, unparsable, or non-positive.
func (s *Service) GetInt(ctx context.Context, key string, def int) int {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Get returns the raw setting value.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, key)
}

// Set stores the raw setting value.
func (s *Service) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, key, value)
}
