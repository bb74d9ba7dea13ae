// Package app wires the operational HTTP surface: health, readiness, and
// metrics. Business routing lives outside this core.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/internship-tracker/internal/adapter/httpserver"
	"github.com/fairyhunter13/internship-tracker/internal/adapter/observability"
	"github.com/fairyhunter13/internship-tracker/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server, ready *ReadinessChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limit mutating endpoints
	r.Group(func(wr chi.Router) {
		wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
		wr.Post("/v1/applications", srv.SubmitHandler())
		wr.Post("/v1/applications/{id}/transition", srv.TransitionHandler())
		wr.Delete("/v1/applications/{id}", srv.CancelHandler())
	})

	// Read-only endpoints
	r.Get("/v1/applications/{id}/history", srv.HistoryHandler())
	r.Get("/v1/recommendations", srv.RecommendHandler())
	r.Get("/v1/stats/overall", srv.OverallStatsHandler())
	r.Get("/v1/stats/users/{id}", srv.UserStatsHandler())
	r.Get("/v1/stats/status-breakdown", srv.StatusBreakdownHandler())
	r.Get("/v1/stats/approval-ratio", srv.ApprovalRatioHandler())
	r.Get("/v1/stats/per-internship", srv.PerInternshipHandler())
	r.Get("/v1/stats/top-performing", srv.TopPerformingHandler())
	r.Get("/v1/stats/transition-durations", srv.TransitionDurationsHandler())

	// Health and metrics
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", ready.Handler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })

	return otelhttp.NewHandler(r, "server")
}
