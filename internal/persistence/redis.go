package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

// RedisStore persists each bin under its own key. All four slots are
// written in one pipeline so a crash never leaves a half-saved board.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedis creates a Redis-backed snapshot store against an established
// client. Callers own the client's lifecycle configuration; the store
// closes it on Close.
func NewRedis(ctx context.Context, client *redis.Client, prefix string, logger zerolog.Logger) (*RedisStore, error) {
	if prefix == "" {
		prefix = "board"
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger = logger.With().Str("component", "redis-store").Logger()
	logger.Info().Str("prefix", prefix).Msg("redis snapshot store ready")

	return &RedisStore{client: client, prefix: prefix, logger: logger}, nil
}

// slotKey addresses one bin's slot.
func (r *RedisStore) slotKey(bin model.Bin) string {
	return r.prefix + ":" + string(bin)
}

// Load reads all four slots. Missing keys mean an empty bin.
func (r *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	for _, bin := range model.Bins {
		data, err := r.client.Get(ctx, r.slotKey(bin)).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load slot %s: %w", bin, err)
		}

		var orders []model.Order
		if err := json.Unmarshal(data, &orders); err != nil {
			return nil, fmt.Errorf("failed to decode slot %s: %w", bin, err)
		}
		snap.SetSlot(bin, orders)
	}
	return snap, nil
}

// Save rewrites all four slots in one transactional pipeline.
func (r *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	pipe := r.client.TxPipeline()
	for _, bin := range model.Bins {
		orders := snap.Slot(bin)
		if orders == nil {
			orders = []model.Order{}
		}
		data, err := json.Marshal(orders)
		if err != nil {
			return fmt.Errorf("failed to encode slot %s: %w", bin, err)
		}
		pipe.Set(ctx, r.slotKey(bin), data, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	r.logger.Debug().
		Int("active", len(snap.Active)).
		Int("in_process", len(snap.InProcess)).
		Int("history", len(snap.History)).
		Int("deleted", len(snap.Deleted)).
		Msg("snapshot saved")
	return nil
}

// Close releases the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
