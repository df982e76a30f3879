package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/shiftboard/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

// sqlDriver maps a configured dialect to its database/sql driver and goose
// dialect.
func sqlDriver(dialect string) (driver, gooseDialect string, err error) {
	switch dialect {
	case "postgres":
		return "pgx", "postgres", nil
	case "sqlite":
		return "sqlite3", "sqlite3", nil
	default:
		return "", "", fmt.Errorf("unsupported sql dialect %q", dialect)
	}
}

func openMigrationDB(cfg internal.SQLConfig) (*sqlx.DB, string, error) {
	driver, dialect, err := sqlDriver(cfg.Dialect)
	if err != nil {
		return nil, "", err
	}
	db, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open db connection: %w", err)
	}
	return db, dialect, nil
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	log := setupLogger(cfg)

	if cfg.Storage.Driver != internal.StorageDriverSQL {
		return errors.New("migrate needs storage.driver set to sql")
	}

	db, dialect, err := openMigrationDB(cfg.Storage.SQL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose: %w", err)
	}
	goose.SetTableName("schema_migrations")

	if migrateRollback {
		if err := goose.DownContext(ctx, db.DB, migrateDir); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		log.Info("rolled back latest migration", "dir", migrateDir)
		return nil
	}

	if err := goose.UpContext(ctx, db.DB, migrateDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	log.Info("migrations applied", "dir", migrateDir)
	return nil
}
