// Package httptransport assembles the HTTP surface: middleware stack,
// credential endpoints, health probes and the metrics endpoint.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	credhandler "github.com/Goodnessmbakara/BlockVerify/internal/credential/handler"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/health"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/middleware"
)

// Config carries the router's wiring inputs.
type Config struct {
	Credentials    *credhandler.Handler
	Health         *health.Handler
	JWTSigningKey  string
	RequestTimeout time.Duration
}

// NewRouter wires all endpoints with the middleware stack. Issuance is guarded
// by the issuer JWT middleware; verification, health and metrics stay public.
func NewRouter(cfg Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireIssuer(cfg.JWTSigningKey, logger))
		cfg.Credentials.RegisterIssue(r)
	})

	cfg.Credentials.RegisterVerify(r)
	cfg.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
