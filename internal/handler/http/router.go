package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// serviceName labels metrics and spans emitted by the router.
const serviceName = "storefront"

// publicStoreMaxAge is the shared-cache lifetime of a public store page.
const publicStoreMaxAge = 30

// RouterOptions holds the deployment-dependent parts of the router.
type RouterOptions struct {
	CORSAllowedOrigins []string
	PprofEnabled       bool
	PprofAllowedCIDRs  []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	authService AuthService,
	resolver IdentityResolver,
	storeService StoreService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	opts RouterOptions,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowCredentials: true,
	}))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if opts.PprofEnabled {
		middleware.RegisterPprof(r, opts.PprofAllowedCIDRs, logger)
	}

	requireSession := authenticate(resolver, logger)

	authHandler := NewAuthHandler(authService, logger)
	userHandler := NewUserHandler()
	storeHandler := NewStoreHandler(storeService, logger)

	// Auth endpoints
	r.Route("/v1/api/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(requireSession).Get("/me", authHandler.Me)
	})

	// Current user
	r.Route("/v1/api/users", func(r chi.Router) {
		r.Use(requireSession)

		r.Get("/me", userHandler.Me)
	})

	// Stores
	r.Route("/v1/api/stores", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Use(requireRole(domain.RoleCreator))

			r.Post("/", storeHandler.Create)
			r.Get("/me", storeHandler.GetMine)
			r.Patch("/me", storeHandler.UpdateMine)
			r.Delete("/me", storeHandler.DeleteMine)
		})

		r.Route("/admin", func(r chi.Router) {
			mountAdminStoreRoutes(r, requireSession, storeHandler)
		})

		r.With(middleware.CacheControl(publicStoreMaxAge)).Get("/{username}", storeHandler.GetPublic)
	})

	// Admin alias
	r.Route("/v1/api/admin/stores", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		mountAdminStoreRoutes(r, requireSession, storeHandler)
	})

	return r
}

func mountAdminStoreRoutes(r chi.Router, requireSession func(http.Handler) http.Handler, h *StoreHandler) {
	r.Use(requireSession)
	r.Use(requireRole(domain.RoleAdmin))

	r.Get("/", h.AdminList)
	r.Get("/{id}", h.AdminGet)
	r.Patch("/{id}/restore", h.AdminRestore)
}
