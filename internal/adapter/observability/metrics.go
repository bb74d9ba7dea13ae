package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	ApplicationsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "applications_submitted_total",
			Help: "Total number of applications submitted",
		},
	)
	ApplicationsCancelledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "applications_cancelled_total",
			Help: "Total number of pending applications cancelled by students",
		},
	)
	ApplicationTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_transitions_total",
			Help: "Total number of status transitions by from/to pair",
		},
		[]string{"from", "to"},
	)

	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache hits by namespace",
		},
		[]string{"namespace"},
	)
	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache misses by namespace",
		},
		[]string{"namespace"},
	)

	RecommendationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Recommendation computation duration in seconds (cache hits included)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
	)

	// MatchScoreHistogram tracks the normalized fraction form [0,1].
	MatchScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "application_match_score",
			Help:    "Distribution of match scores at submission (normalized fraction [0,1])",
			Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"type"},
	)
	EventPublishFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_failures_total",
			Help: "Total number of domain event publish failures after retries",
		},
		[]string{"type"},
	)
)

// InitMetrics registers all Prometheus collectors once per process.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(ApplicationsSubmittedTotal)
	prometheus.MustRegister(ApplicationsCancelledTotal)
	prometheus.MustRegister(ApplicationTransitionsTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(RecommendationDuration)
	prometheus.MustRegister(MatchScoreHistogram)
	prometheus.MustRegister(EventsPublishedTotal)
	prometheus.MustRegister(EventPublishFailuresTotal)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}
