package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ryanbastic/go-sampledb/internal/metrics"
)

// NewServer creates the ops HTTP handler. status may be nil when no
// follower runs in the process.
func NewServer(logger *slog.Logger, health *HealthHandler, status FollowerStatusFunc) http.Handler {
	mux := chi.NewRouter()

	mux.Use(RequestID)
	mux.Use(Logging(logger))
	mux.Use(Recovery(logger))
	mux.Use(metrics.Metrics)

	mux.Get("/livez", health.Livez)
	mux.Get("/readyz", health.Readyz)
	mux.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if status != nil {
		api := humachi.New(mux, huma.DefaultConfig("SampleDB follower", "1.0.0"))
		registerFollowerRoutes(api, status)
	}

	return mux
}
