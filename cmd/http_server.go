package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/shiftboard/internal/transport/swagger"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startHTTPServer(); err != nil {
			fmt.Fprintf(os.Stderr, "server: %v\n", err)
			os.Exit(1)
		}
	},
}

func startHTTPServer() error {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg)

	ctx := context.Background()
	if _, err := swagger.Validate(ctx); err != nil {
		return fmt.Errorf("invalid openapi document: %w", err)
	}

	backend, err := openBackend(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}

	app, err := newApp(cfg, backend, log)
	if err != nil {
		_ = backend.Close()
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	scheduler, err := startPurgeScheduler(app, cfg.Sessions.PurgeSchedule, log)
	if err != nil {
		_ = app.Shutdown(ctx)
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", addr, "storage", cfg.Storage.Driver)
		serverErrChan <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", "error", err)
	}
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Error("Application shutdown error", "error", err)
	}

	log.Info("Server stopped")
	return runErr
}

// startPurgeScheduler removes expired sessions on spec. An empty spec disables
// the job.
func startPurgeScheduler(app *App, spec string, log *slog.Logger) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := app.Sessions.PurgeExpired(ctx); err != nil {
			log.Error("scheduled session purge failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info("session purge scheduled", "spec", spec)
	return c, nil
}
