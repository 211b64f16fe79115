package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/qsecurex/portal/internal/api/handlers"
	"github.com/qsecurex/portal/internal/api/middleware"
	"github.com/qsecurex/portal/internal/config"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/metrics"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Payment     *handlers.PaymentHandler
	License     *handlers.LicenseHandler
	FreeRequest *handlers.FreeRequestHandler
	Download    *handlers.DownloadHandler
	Device      *handlers.DeviceHandler
	Admin       *handlers.AdminHandler
}

// New builds the HTTP handler. Background work started by the middleware
// (rate limiter sweeps) stops when ctx is cancelled.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(metrics.Middleware)
	// Logger must wrap the writer closest to the handlers so AddLogField works
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.PortalCORS(cfg.Server.FrontendURL, cfg.Server.Environment))
	r.Use(middleware.RateLimit(ctx, 100, 200)) // 100 req/sec, burst of 200

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
		r.Handle("/metrics", metrics.Handler())

		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)

		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.Refresh)
		r.Get("/download/remaining", h.Download.Remaining)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/payment", func(r chi.Router) {
				r.Use(middleware.UserRateLimit(ctx, 1, 10))
				r.Get("/key", h.Payment.Key)
				r.Post("/create-order", h.Payment.CreateOrder)
				r.Post("/verify", h.Payment.Verify)
			})

			r.Route("/licenses", func(r chi.Router) {
				r.Get("/", h.License.List)
				r.Post("/free-request", h.FreeRequest.Create)
				r.Get("/free-requests", h.FreeRequest.ListMine)
			})

			r.Route("/download", func(r chi.Router) {
				r.Use(middleware.UserRateLimit(ctx, 1, 5))
				r.Get("/check-eligibility", h.Download.CheckEligibility)
				r.Get("/user-status", h.Download.UserStatus)
				r.Get("/macos-dmg", h.Download.FreeDMG)
				r.Get("/macos-personal", h.Download.PersonalDMG)
				r.Get("/macos-pro", h.Download.ProDMG)
			})

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", h.Device.List)
				r.Post("/", h.Device.Register)
				r.Delete("/{id}", h.Device.Remove)
			})

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/stats", h.Admin.Stats)
				r.Get("/users", h.Admin.ListUsers)
				r.Delete("/users/{id}", h.Admin.DeleteUser)

				r.Post("/send-license", h.Admin.SendLicense)
				r.Get("/licenses", h.Admin.ListLicenses)
				r.Get("/license-history", h.Admin.LicenseHistory)
				r.Get("/purchases", h.Admin.ListPurchases)
				r.Get("/orders/captured", h.Payment.CapturedOrders)
				r.Get("/devices", h.Device.ListAll)

				r.Get("/licenses/free-requests", h.FreeRequest.List)
				r.Post("/licenses/free-requests/{id}/approve", h.FreeRequest.Approve)
				r.Post("/licenses/free-requests/{id}/reject", h.FreeRequest.Reject)

				r.Get("/download-settings", h.Admin.DownloadSettings)
				r.Post("/download-settings/toggle", h.Admin.ToggleDownloads)
				r.Post("/download-settings/reset", h.Admin.ResetDownloads)
			})
		})
	})

	return r
}
