package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/employee"
	employeeStorage "github.com/frahmantamala/shiftboard/internal/employee/storage"
	"github.com/frahmantamala/shiftboard/internal/notification"
	"github.com/frahmantamala/shiftboard/internal/payroll"
	"github.com/frahmantamala/shiftboard/internal/schedule"
	scheduleStorage "github.com/frahmantamala/shiftboard/internal/schedule/storage"
	"github.com/frahmantamala/shiftboard/internal/session"
	sessionStorage "github.com/frahmantamala/shiftboard/internal/session/storage"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/internal/transport/middleware"
	"github.com/frahmantamala/shiftboard/internal/transport/rest"
	"github.com/frahmantamala/shiftboard/internal/user"
	userStorage "github.com/frahmantamala/shiftboard/internal/user/storage"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// App holds the services of one process and the router serving them.
type App struct {
	Config *internal.Config
	Logger *slog.Logger

	Backend    store.Backend
	EventBus   *events.EventBus
	Dispatcher *notification.Dispatcher

	Users     *user.Service
	Sessions  *session.Service
	Employees *employee.Service
	Schedules *schedule.Service
	Payroll   *payroll.Service
	Auth      *auth.Service

	Router *chi.Mux

	jobsMu  sync.Mutex
	closing bool
	jobs    sync.WaitGroup
}

// newApp wires every component on top of backend. The backend is owned by the
// App from here on and closed by Shutdown.
func newApp(cfg *internal.Config, backend store.Backend, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Backend:  backend,
		EventBus: events.NewEventBus(logger),
	}

	var seed []userDatamodel.User
	if cfg.Storage.SeedDemoUser {
		demo, err := demoUser(cfg.Security.BCryptCost)
		if err != nil {
			return nil, err
		}
		seed = append(seed, demo)
	}

	app.Users = user.NewService(userStorage.NewUserRepository(backend, seed...), logger,
		user.WithBCryptCost(cfg.Security.BCryptCost))
	app.Sessions = session.NewService(sessionStorage.NewSessionRepository(backend), logger,
		session.WithTTL(cfg.Security.SessionTTL))
	app.Employees = employee.NewService(employeeStorage.NewEmployeeRepository(backend), logger)
	app.Schedules = schedule.NewService(scheduleStorage.NewScheduleRepository(backend), logger,
		schedule.WithPublisher(app.EventBus),
		schedule.WithRoster(app.Employees),
		schedule.WithRunner(app.track),
	)
	app.Payroll = payroll.NewService(app.Schedules, app.Employees, logger)
	app.Auth = auth.NewService(app.Users, app.Sessions, auth.NewJWTCodec(cfg.Security.TokenSecret), auth.Options{
		EnforceSessionRecords: cfg.Security.EnforceSessionRecords,
		AcceptLegacyTokens:    cfg.Security.AcceptLegacyTokens,
	}, logger)

	app.Dispatcher = notification.NewDispatcher(newSender(cfg.Notification, logger), notification.DispatcherConfig{
		MaxWorkers:  cfg.Notification.MaxWorkers,
		QueueSize:   cfg.Notification.QueueSize,
		SendTimeout: cfg.Notification.Timeout,
	}, logger)
	notification.NewEventHandler(app.Employees, app.Dispatcher, logger).RegisterEventHandlers(app.EventBus)

	proxies, err := cfg.Server.TrustedProxyPrefixes()
	if err != nil {
		return nil, err
	}
	app.Router = chi.NewRouter()
	app.registerRoutes(proxies)

	return app, nil
}

func demoUser(cost int) (userDatamodel.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.DemoPassword), cost)
	if err != nil {
		return userDatamodel.User{}, fmt.Errorf("failed to hash demo password: %w", err)
	}
	return user.DemoUser(uuid.NewString(), string(hash), time.Now()), nil
}

func newSender(cfg internal.NotificationConfig, logger *slog.Logger) notification.Sender {
	if cfg.Driver == "webhook" {
		return notification.NewWebhookSender(notification.WebhookConfig{
			EmailURL: cfg.EmailURL,
			SMSURL:   cfg.SMSURL,
			APIKey:   cfg.APIKey,
			Timeout:  cfg.Timeout,
		}, logger)
	}
	return notification.NewLogSender(logger)
}

func (a *App) registerRoutes(proxies []netip.Prefix) {
	base := transport.NewBaseHandler(a.Logger)

	checks := map[string]rest.Pinger{}
	if p, ok := a.Backend.(rest.Pinger); ok {
		checks["storage"] = p
	}

	var limiter *middleware.RateLimiter
	if a.Config.Security.LoginRateLimit > 0 {
		limiter = middleware.NewRateLimiter(a.Config.Security.LoginRateLimit, a.Config.Security.LoginBurst)
	}

	rest.RegisterAllRoutes(a.Router, rest.Handlers{
		Health: rest.NewHealthHandler(checks),
		Auth: auth.NewHandler(base, a.Auth, auth.CookieConfig{
			Name:   a.Config.Security.CookieName,
			Secure: a.Config.Security.CookieSecure,
		}),
		User:     user.NewHandler(base, a.Users),
		Session:  session.NewHandler(base, a.Sessions),
		Employee: employee.NewHandler(base, a.Employees),
		Schedule: schedule.NewHandler(base, a.Schedules),
		Payroll:  payroll.NewHandler(base, a.Payroll),
	}, rest.Options{
		AllowedOrigins: a.Config.Server.AllowedOrigins,
		TrustedProxies: proxies,
		LoginLimiter:   limiter,
		LogRequests:    a.Config.Env != "test",
	}, a.Logger)
}

// track runs a generation job and keeps Shutdown waiting for it. Jobs are
// refused once Shutdown has started.
func (a *App) track(job func()) error {
	a.jobsMu.Lock()
	defer a.jobsMu.Unlock()
	if a.closing {
		return internal.ErrShuttingDown
	}

	a.jobs.Add(1)
	go func() {
		defer a.jobs.Done()
		job()
	}()
	return nil
}

// Shutdown waits for generation jobs, event handlers and queued notifications,
// then closes the backend.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	a.jobsMu.Lock()
	a.closing = true
	a.jobsMu.Unlock()

	done := make(chan struct{})
	go func() {
		a.jobs.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("generation jobs: %w", ctx.Err()))
	}

	if err := a.EventBus.Wait(ctx); err != nil {
		errs = append(errs, fmt.Errorf("event handlers: %w", err))
	}
	if err := a.Dispatcher.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("notifications: %w", err))
	}
	if err := a.Backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}

	return errors.Join(errs...)
}
