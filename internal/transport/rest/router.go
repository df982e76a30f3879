package rest

import (
	"log/slog"
	"net/netip"

	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/employee"
	"github.com/frahmantamala/shiftboard/internal/payroll"
	"github.com/frahmantamala/shiftboard/internal/schedule"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/internal/transport/middleware"
	"github.com/frahmantamala/shiftboard/internal/transport/swagger"
	"github.com/frahmantamala/shiftboard/internal/user"
	"github.com/go-chi/chi"
)

type Handlers struct {
	Health   *HealthHandler
	Auth     *auth.Handler
	User     *user.Handler
	Session  *session.Handler
	Employee *employee.Handler
	Schedule *schedule.Handler
	Payroll  *payroll.Handler
}

type Options struct {
	AllowedOrigins string
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix
	// LoginLimiter throttles signup and login per client address. Nil disables it.
	LoginLimiter *middleware.RateLimiter
	LogRequests  bool
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	// Apply global middleware
	router.Use(middleware.RequestID)
	if len(opts.TrustedProxies) > 0 {
		router.Use(middleware.RealIP(opts.TrustedProxies))
	}
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.LogRequests {
		router.Use(middleware.LoggingMiddleware(logger))
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", swagger.DocumentHandler)
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Group(func(ar chi.Router) {
			ar.Use(h.Auth.Authenticate)

			// Auth routes
			ar.Route("/auth", func(sr chi.Router) {
				sr.Group(func(lr chi.Router) {
					if opts.LoginLimiter != nil {
						lr.Use(opts.LoginLimiter.Handler)
					}
					lr.Post("/signup", h.Auth.Signup)
					lr.Post("/login", h.Auth.Login)
				})
				sr.Post("/logout", h.Auth.Logout)
				sr.With(h.Auth.RequireAuth).Get("/session", h.Auth.Session)
			})

			// Protected routes that require authentication
			ar.Group(func(pr chi.Router) {
				pr.Use(h.Auth.RequireAuth)

				pr.Route("/users/me", func(ur chi.Router) {
					ur.Get("/", h.User.GetCurrentUser)
					ur.Put("/", h.User.UpdateCurrentUser)
					ur.Put("/password", h.User.ChangePassword)
				})

				pr.Route("/sessions", func(sr chi.Router) {
					sr.Get("/", h.Session.ListSessions)
					sr.Delete("/", h.Session.RevokeOtherSessions)
					sr.Post("/ping", h.Session.Ping)
					sr.Delete("/{id}", h.Session.RevokeSession)
				})

				pr.Route("/employees", func(er chi.Router) {
					er.Get("/", h.Employee.ListEmployees)
					er.Post("/", h.Employee.CreateEmployee)
					er.Post("/import", h.Employee.ImportRoster)
					er.Get("/{id}", h.Employee.GetEmployee)
					er.Put("/{id}", h.Employee.UpdateEmployee)
					er.Delete("/{id}", h.Employee.DeleteEmployee)
					er.Get("/{id}/shifts", h.Schedule.EmployeeShifts)
				})

				pr.Route("/schedules", func(sr chi.Router) {
					sr.Get("/", h.Schedule.ListSchedules)
					sr.Post("/", h.Schedule.CreateSchedule)
					sr.Get("/{id}", h.Schedule.GetSchedule)
					sr.Put("/{id}", h.Schedule.UpdateSchedule)
					sr.Delete("/{id}", h.Schedule.DeleteSchedule)
					sr.Post("/{id}/publish", h.Schedule.PublishSchedule)
					sr.Post("/{id}/unpublish", h.Schedule.UnpublishSchedule)
					sr.Post("/{id}/generate", h.Schedule.GenerateSchedule)
					sr.Post("/{id}/shifts", h.Schedule.AddShift)
					sr.Delete("/{id}/shifts/{shiftId}", h.Schedule.RemoveShift)
					sr.Get("/{id}/payroll", h.Payroll.GetPayroll)
					sr.Get("/{id}/payroll.xlsx", h.Payroll.DownloadPayroll)
				})
			})
		})
	})
}
