package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/shiftboard/internal/session"
	sessionStorage "github.com/frahmantamala/shiftboard/internal/session/storage"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Session maintenance commands",
}

var purgeSessionsCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired sessions",
	Long:  `Delete every session whose expiry is in the past. The server runs the same job on sessions.purge_schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log := setupLogger(cfg)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		backend, err := openBackend(ctx, cfg.Storage, log)
		if err != nil {
			return err
		}
		defer backend.Close()

		svc := session.NewService(sessionStorage.NewSessionRepository(backend), log)
		n, err := svc.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d expired sessions\n", n)
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(purgeSessionsCmd)
}
