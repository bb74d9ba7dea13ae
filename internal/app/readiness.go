package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// RedisPingResult is the minimal return type of a Redis client's Ping.
type RedisPingResult interface{ Err() error }

// RedisClient is the minimal interface for a Redis client needed for readiness.
type RedisClient interface{ Ping(ctx context.Context) RedisPingResult }

// Check is one named readiness probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// ReadinessChecker runs probes against the external stores the core
// depends on. A failing Redis only degrades caching, but it is still
// reported so operators see it.
type ReadinessChecker struct {
	checks []Check
}

// NewReadinessChecker builds the standard db + redis checks.
func NewReadinessChecker(pool Pinger, rdb RedisClient) *ReadinessChecker {
	return &ReadinessChecker{checks: []Check{
		{Name: "db", Probe: func(ctx context.Context) error {
			if pool == nil {
				return fmt.Errorf("db not configured")
			}
			return pool.Ping(ctx)
		}},
		{Name: "redis", Probe: func(ctx context.Context) error {
			if rdb == nil {
				return fmt.Errorf("redis not configured")
			}
			return rdb.Ping(ctx).Err()
		}},
	}}
}

type checkResult struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details string `json:"details,omitempty"`
}

// Handler serves the readiness endpoint: 200 when every probe passes,
// 503 with per-check details otherwise.
func (rc *ReadinessChecker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		results := make([]checkResult, 0, len(rc.checks))
		allOK := true
		for _, c := range rc.checks {
			res := checkResult{Name: c.Name, OK: true}
			if err := c.Probe(ctx); err != nil {
				res.OK = false
				res.Details = err.Error()
				allOK = false
			}
			results = append(results, res)
		}
		w.Header().Set("Content-Type", "application/json")
		if !allOK {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": allOK, "checks": results})
	}
}
