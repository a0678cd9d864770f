package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custadmin/custadmin/internal/model"
)

const (
	// DefaultKey is the Redis key holding the customer list snapshot.
	DefaultKey = "custadmin:customers"

	// maxUpdateRetries bounds optimistic WATCH retries per update.
	maxUpdateRetries = 5
)

// RedisStore keeps the snapshot as JSON under a single Redis key so that
// several console instances share one list.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedis connects to Redis and returns a RedisStore.
func NewRedis(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 1
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisStore{client: client, key: DefaultKey}, nil
}

// NewRedisWithClient wraps an existing client, storing under key.
func NewRedisWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Get reads the current snapshot.
func (r *RedisStore) Get(ctx context.Context) (Snapshot, error) {
	return r.read(ctx, r.client)
}

// Update applies fn inside a WATCH/MULTI transaction, retrying when
// another writer touched the key in between.
func (r *RedisStore) Update(ctx context.Context, fn ReconcileFunc) (Snapshot, error) {
	var result Snapshot

	txf := func(tx *redis.Tx) error {
		current, err := r.read(ctx, tx)
		if err != nil {
			return err
		}

		next, err := fn(current.Customers)
		if err != nil {
			return err
		}

		snap := nextSnapshot(next)
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}

		result = snap
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, r.key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return Snapshot{}, err
	}

	return Snapshot{}, ErrConflict
}

// Ping checks Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Client returns the underlying Redis client.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) read(ctx context.Context, c getter) (Snapshot, error) {
	data, err := c.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return emptySnapshot(), nil
		}
		return Snapshot{}, fmt.Errorf("redis get failed: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Customers == nil {
		snap.Customers = []model.Customer{}
	}
	return snap, nil
}
