package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

// PoolConfig holds PostgreSQL connection pool settings.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// DefaultPoolConfig returns sensible pool defaults for the board's modest
// write rate.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: 1 * time.Hour,
	}
}

// NewPool creates a PostgreSQL connection pool and verifies connectivity.
func NewPool(ctx context.Context, connString string, cfg *PoolConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	if cfg == nil {
		cfg = DefaultPoolConfig()
	}

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Int32("max_conns", cfg.MaxConns).
		Int32("min_conns", cfg.MinConns).
		Msg("database connection pool created")
	return pool, nil
}

// PostgresStore persists the four bin slots as rows of one table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgres creates a Postgres-backed snapshot store and ensures the
// schema exists.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) (*PostgresStore, error) {
	s := &PostgresStore{
		pool:   pool,
		logger: logger.With().Str("component", "postgres-store").Logger(),
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureSchema creates the slot table if missing.
func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS board_bins (
			bin        TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Load reads all four slots. Missing rows mean an empty bin.
func (s *PostgresStore) Load(ctx context.Context) (*Snapshot, error) {
	rows, err := s.pool.Query(ctx, `SELECT bin, payload FROM board_bins`)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	defer rows.Close()

	snap := &Snapshot{}
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan slot row: %w", err)
		}

		bin, ok := model.ParseBin(name)
		if !ok {
			s.logger.Warn().Str("bin", name).Msg("ignoring unknown slot row")
			continue
		}

		var orders []model.Order
		if err := json.Unmarshal(payload, &orders); err != nil {
			return nil, fmt.Errorf("failed to decode slot %s: %w", bin, err)
		}
		snap.SetSlot(bin, orders)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

// Save upserts all four slots within one transaction.
func (s *PostgresStore) Save(ctx context.Context, snap *Snapshot) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const upsert = `
		INSERT INTO board_bins (bin, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (bin) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`

	for _, bin := range model.Bins {
		orders := snap.Slot(bin)
		if orders == nil {
			orders = []model.Order{}
		}
		payload, err := json.Marshal(orders)
		if err != nil {
			return fmt.Errorf("failed to encode slot %s: %w", bin, err)
		}
		if _, err := tx.Exec(ctx, upsert, string(bin), payload); err != nil {
			return fmt.Errorf("failed to save slot %s: %w", bin, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.logger.Debug().
		Int("active", len(snap.Active)).
		Int("in_process", len(snap.InProcess)).
		Int("history", len(snap.History)).
		Int("deleted", len(snap.Deleted)).
		Msg("snapshot saved")
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
