package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/store/filestore"
	"github.com/frahmantamala/shiftboard/internal/store/memory"
	"github.com/frahmantamala/shiftboard/internal/store/redisstore"
	"github.com/frahmantamala/shiftboard/internal/store/sqlstore"
)

// openBackend returns the record store selected by cfg.Driver.
func openBackend(ctx context.Context, cfg internal.StorageConfig, logger *slog.Logger) (store.Backend, error) {
	switch cfg.Driver {
	case internal.StorageDriverFile:
		return filestore.New(cfg.DataDir, logger), nil
	case internal.StorageDriverMemory:
		return memory.New(), nil
	case internal.StorageDriverSQL:
		b, err := sqlstore.Open(cfg.SQL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sql store: %w", err)
		}
		if err := b.Ping(ctx); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return b, nil
	case internal.StorageDriverRedis:
		b, err := redisstore.Open(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
