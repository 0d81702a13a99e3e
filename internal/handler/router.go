package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"aa-consent-gateway/internal/metrics"
	"aa-consent-gateway/internal/middleware"
	"aa-consent-gateway/pkg/logger"
)

// MountPrefix is the legacy mount point the routes are also served under
const MountPrefix = "/finvu-aa"

// RouterOptions configures NewRouter
type RouterOptions struct {
	Consent        *ConsentHandler
	Health         *HealthHandler
	Auth           *middleware.AuthMiddleware
	Metrics        *metrics.Registry
	Logger         *logger.Logger
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter builds the HTTP surface. Consent and health routes are served
// both at the root and under MountPrefix.
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(opts.Logger, opts.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.APIKeyHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if opts.MaxBodyBytes > 0 {
		r.Use(chimw.RequestSize(opts.MaxBodyBytes))
	}

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	r.Get("/", ServiceInfo)
	r.Handle("/metrics", opts.Metrics.Handler())

	routes := func(r chi.Router) {
		r.Get("/health", opts.Health.CheckHealth)
		r.Group(func(r chi.Router) {
			r.Use(opts.Auth.Authenticate)
			r.Post("/consent/generate", opts.Consent.GenerateConsent)
			r.Post("/consent/verify", opts.Consent.VerifyConsent)
		})
	}
	routes(r)
	r.Route(MountPrefix, routes)

	return r
}

// ServiceInfo handles GET /
func ServiceInfo(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]any{
		"service": ServiceName,
		"version": ServiceVersion,
		"status":  "running",
		"endpoints": map[string]string{
			"generate": "POST " + MountPrefix + "/consent/generate",
			"verify":   "POST " + MountPrefix + "/consent/verify",
			"health":   "GET " + MountPrefix + "/health",
			"metrics":  "GET /metrics",
		},
	})
}
