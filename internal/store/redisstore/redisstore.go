// Package redisstore keeps each collection under one redis key and updates it
// with WATCH/MULTI optimistic transactions.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/redis/go-redis/v9"
)

const defaultMaxRetries = 10

type Backend struct {
	client     *redis.Client
	prefix     string
	maxRetries int
	logger     *slog.Logger
}

func New(client *redis.Client, prefix string, maxRetries int, logger *slog.Logger) *Backend {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Backend{
		client:     client,
		prefix:     prefix,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func Open(ctx context.Context, cfg internal.RedisConfig, logger *slog.Logger) (*Backend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return New(client, cfg.KeyPrefix, cfg.MaxRetries, logger), nil
}

func (b *Backend) key(collection string) string {
	return b.prefix + collection
}

func (b *Backend) Load(ctx context.Context, collection string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (b *Backend) Save(ctx context.Context, collection string, data []byte) error {
	return b.client.Set(ctx, b.key(collection), data, 0).Err()
}

// Mutate retries when another client changed the key between WATCH and EXEC.
// After maxRetries lost races it gives up with store.ErrConflict.
func (b *Backend) Mutate(ctx context.Context, collection string, fn store.MutateFunc) error {
	key := b.key(collection)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			current = nil
		case err != nil:
			return err
		case current == nil:
			current = []byte{}
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= b.maxRetries; attempt++ {
		err := b.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			b.logger.Debug("redisstore: optimistic lock lost, retrying", "collection", collection, "attempt", attempt)
			continue
		}
		return err
	}

	b.logger.Warn("redisstore: giving up after repeated conflicts", "collection", collection, "retries", b.maxRetries)
	return store.ErrConflict
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Backend) Close() error {
	return b.client.Close()
}
