// Command server starts the internship tracker service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/internship-tracker/internal/adapter/cache/rediscache"
	eventspub "github.com/fairyhunter13/internship-tracker/internal/adapter/events/redpanda"
	"github.com/fairyhunter13/internship-tracker/internal/adapter/httpserver"
	"github.com/fairyhunter13/internship-tracker/internal/adapter/observability"
	"github.com/fairyhunter13/internship-tracker/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/internship-tracker/internal/app"
	"github.com/fairyhunter13/internship-tracker/internal/config"
	"github.com/fairyhunter13/internship-tracker/internal/service/match"
	"github.com/fairyhunter13/internship-tracker/internal/usecase"
	"github.com/fairyhunter13/internship-tracker/pkg/skillx"
)

// redisAdapter narrows *redis.Client to the readiness port.
type redisAdapter struct{ *redis.Client }

func (r redisAdapter) Ping(ctx context.Context) app.RedisPingResult {
	return r.Client.Ping(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	// Infra: DB pool
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Cache (Redis)
	rdb := rediscache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	cache := rediscache.New(rdb)

	// Event publisher (Redpanda)
	publisher, err := eventspub.NewPublisher(cfg.KafkaBrokers, cfg.EventTopic)
	if err != nil {
		slog.Error("event publisher connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("failed to close event publisher", slog.Any("error", err))
		}
	}()

	// Scorer, with the optional skill alias table
	aliases, err := skillx.LoadAliasTable(cfg.SkillAliasFile)
	if err != nil {
		slog.Error("skill alias table load failed", slog.Any("error", err))
		os.Exit(1)
	}
	scorer := match.NewScorer(aliases)

	// Repositories
	appRepo := postgres.NewApplicationRepo(pool)
	internshipRepo := postgres.NewInternshipRepo(pool)
	profileRepo := postgres.NewProfileRepo(pool)
	auditRepo := postgres.NewAuditRepo(pool)
	statsRepo := postgres.NewStatsRepo(pool)

	flags := config.NewFlags(cfg)

	// Usecases
	appSvc := usecase.NewApplicationService(appRepo, internshipRepo, profileRepo, auditRepo, scorer, cache, publisher, flags)
	recSvc := usecase.NewRecommendService(profileRepo, internshipRepo, appRepo, scorer, cache, flags, cfg.RecommendationTTL)
	analyticsSvc := usecase.NewAnalyticsService(statsRepo, auditRepo, cache, cfg.AnalyticsTTL, cfg.TransitionDurationsTTL)

	srvHandlers := httpserver.NewServer(appSvc, recSvc, analyticsSvc)
	ready := app.NewReadinessChecker(pool, redisAdapter{rdb})
	handler := app.BuildRouter(cfg, srvHandlers, ready)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		slog.Info("server listening", slog.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", slog.Any("error", err))
	}
	slog.Info("server stopped")
}
