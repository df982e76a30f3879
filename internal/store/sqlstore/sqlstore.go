// Package sqlstore keeps each collection as one row of the collections table.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/datamodel/document"
	"github.com/frahmantamala/shiftboard/internal/store"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type Backend struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) *Backend {
	return &Backend{db: db, logger: logger}
}

// Open connects with the configured dialect and applies pool settings.
func Open(cfg internal.SQLConfig, logger *slog.Logger) (*Backend, error) {
	var dialector gorm.Dialector
	switch cfg.Dialect {
	case "postgres":
		dialector = postgres.Open(cfg.Source)
	case "sqlite":
		dialector = sqlite.Open(cfg.Source)
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", cfg.Dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Dialect, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	b := New(db, logger)
	if cfg.AutoMigrate {
		if err := b.Migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return b, nil
}

// Migrate creates the collections table when it is missing. Deployments
// managed by goose can leave auto_migrate off.
func (b *Backend) Migrate() error {
	if err := b.db.AutoMigrate(&document.Collection{}); err != nil {
		return fmt.Errorf("migrate collections table: %w", err)
	}
	return nil
}

func (b *Backend) Load(ctx context.Context, collection string) ([]byte, error) {
	var row document.Collection
	err := b.db.WithContext(ctx).Where("collection = ?", collection).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return []byte(row.Data), nil
}

func (b *Backend) Save(ctx context.Context, collection string, data []byte) error {
	return upsert(b.db.WithContext(ctx), collection, data)
}

// Mutate runs fn inside a transaction. On postgres the row is read with
// SELECT ... FOR UPDATE so concurrent writers queue behind each other.
func (b *Backend) Mutate(ctx context.Context, collection string, fn store.MutateFunc) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var row document.Collection
		var current []byte
		err := q.Where("collection = ?", collection).Take(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			current = []byte(row.Data)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		return upsert(tx, collection, next)
	})
}

func upsert(db *gorm.DB, collection string, data []byte) error {
	row := document.Collection{
		Name:      collection,
		Data:      string(data),
		UpdatedAt: time.Now().UTC(),
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}

func (b *Backend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
