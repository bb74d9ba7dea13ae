package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/internship-tracker/internal/adapter/observability"
	"github.com/fairyhunter13/internship-tracker/internal/domain"
)

// Default analytics cache lifetimes. Overall stats track the 5 minute
// window the rest of the derived data uses; transition-duration averages
// change slowly and keep a longer one.
const (
	DefaultAnalyticsTTL = 5 * time.Minute
	DefaultDurationsTTL = 10 * time.Minute
)

// Analytics cache keys inside the analytics namespace.
const (
	keyOverall         = "overall"
	keyStatusBreakdown = "status_breakdown"
	keyApprovalRatio   = "approval_ratio"
	keyDurations       = "transition_durations"
)

// OverallStats is the platform-wide aggregate snapshot.
type OverallStats struct {
	Total             int64                              `json:"total"`
	ByStatus          map[domain.ApplicationStatus]int64 `json:"by_status"`
	ApprovalRatio     float64                            `json:"approval_ratio"`
	ScoreDistribution map[int]int64                      `json:"score_distribution"`
}

// UserStats aggregates one user's applications.
type UserStats struct {
	UserID        string                             `json:"user_id"`
	Total         int64                              `json:"total"`
	ByStatus      map[domain.ApplicationStatus]int64 `json:"by_status"`
	AvgMatchScore float64                            `json:"avg_match_score"`
}

// AnalyticsService computes read-only aggregate statistics over the
// application and audit data, cached with short TTLs. Readers may observe
// data up to one TTL stale; mutations invalidate the whole namespace.
type AnalyticsService struct {
	Stats        domain.StatsRepository
	Audit        domain.AuditRepository
	Cache        domain.Cache
	TTL          time.Duration
	DurationsTTL time.Duration
}

// NewAnalyticsService constructs an AnalyticsService; zero TTLs fall back
// to the package defaults.
func NewAnalyticsService(stats domain.StatsRepository, audit domain.AuditRepository, cache domain.Cache, ttl, durationsTTL time.Duration) AnalyticsService {
	if ttl <= 0 {
		ttl = DefaultAnalyticsTTL
	}
	if durationsTTL <= 0 {
		durationsTTL = DefaultDurationsTTL
	}
	return AnalyticsService{Stats: stats, Audit: audit, Cache: cache, TTL: ttl, DurationsTTL: durationsTTL}
}

// GetOverallStats returns the platform-wide status breakdown, approval
// ratio, and score distribution.
func (s AnalyticsService) GetOverallStats(ctx domain.Context) (OverallStats, error) {
	tracer := otel.Tracer("usecase.analytics")
	ctx, span := tracer.Start(ctx, "analytics.GetOverallStats")
	defer span.End()

	var stats OverallStats
	if s.cacheGet(ctx, keyOverall, &stats) {
		return stats, nil
	}

	byStatus, err := s.Stats.CountByStatus(ctx)
	if err != nil {
		return OverallStats{}, err
	}
	dist, err := s.Stats.ScoreDistribution(ctx)
	if err != nil {
		return OverallStats{}, err
	}
	var total int64
	for _, c := range byStatus {
		total += c
	}
	stats = OverallStats{
		Total:             total,
		ByStatus:          byStatus,
		ApprovalRatio:     approvalRatio(byStatus, total),
		ScoreDistribution: dist,
	}
	s.cacheSet(ctx, keyOverall, stats, s.TTL)
	return stats, nil
}

// GetStatusBreakdown returns application counts per status.
func (s AnalyticsService) GetStatusBreakdown(ctx domain.Context) (map[domain.ApplicationStatus]int64, error) {
	var breakdown map[domain.ApplicationStatus]int64
	if s.cacheGet(ctx, keyStatusBreakdown, &breakdown) {
		return breakdown, nil
	}
	byStatus, err := s.Stats.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, keyStatusBreakdown, byStatus, s.TTL)
	return byStatus, nil
}

// GetApprovalRatio returns approved applications as a fraction of all
// applications; zero when there are none.
func (s AnalyticsService) GetApprovalRatio(ctx domain.Context) (float64, error) {
	var ratio float64
	if s.cacheGet(ctx, keyApprovalRatio, &ratio) {
		return ratio, nil
	}
	byStatus, err := s.Stats.CountByStatus(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, c := range byStatus {
		total += c
	}
	ratio = approvalRatio(byStatus, total)
	s.cacheSet(ctx, keyApprovalRatio, ratio, s.TTL)
	return ratio, nil
}

// GetUserStats returns the per-user aggregate, cached under the analytics
// namespace so any mutation for the user refreshes it.
func (s AnalyticsService) GetUserStats(ctx domain.Context, userID string) (UserStats, error) {
	if userID == "" {
		return UserStats{}, fmt.Errorf("%w: user id required", domain.ErrInvalidArgument)
	}
	key := "user:" + userID
	var stats UserStats
	if s.cacheGet(ctx, key, &stats) {
		return stats, nil
	}
	byStatus, err := s.Stats.CountByStatusForUser(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	avg, err := s.Stats.AvgMatchScoreForUser(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	var total int64
	for _, c := range byStatus {
		total += c
	}
	stats = UserStats{UserID: userID, Total: total, ByStatus: byStatus, AvgMatchScore: avg}
	s.cacheSet(ctx, key, stats, s.TTL)
	return stats, nil
}

// GetApplicationsPerInternship returns the most applied-to internships.
func (s AnalyticsService) GetApplicationsPerInternship(ctx domain.Context, limit int) ([]domain.InternshipCount, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidArgument)
	}
	key := fmt.Sprintf("per_internship:%d", limit)
	var counts []domain.InternshipCount
	if s.cacheGet(ctx, key, &counts) {
		return counts, nil
	}
	counts, err := s.Stats.ApplicationsPerInternship(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, counts, s.TTL)
	return counts, nil
}

// GetTopPerformingInternships ranks internships by approved applications.
func (s AnalyticsService) GetTopPerformingInternships(ctx domain.Context, limit int) ([]domain.InternshipPerformance, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidArgument)
	}
	key := fmt.Sprintf("top_performing:%d", limit)
	var perf []domain.InternshipPerformance
	if s.cacheGet(ctx, key, &perf) {
		return perf, nil
	}
	perf, err := s.Stats.TopPerformingInternships(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, perf, s.TTL)
	return perf, nil
}

// GetTransitionDurations returns average stage-to-stage dwell times across
// all applications, for the prediction feature outside this core.
func (s AnalyticsService) GetTransitionDurations(ctx domain.Context) ([]domain.TransitionDuration, error) {
	var durations []domain.TransitionDuration
	if s.cacheGet(ctx, keyDurations, &durations) {
		return durations, nil
	}
	durations, err := s.Audit.TransitionDurations(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, keyDurations, durations, s.DurationsTTL)
	return durations, nil
}

func (s AnalyticsService) cacheGet(ctx domain.Context, key string, dest any) bool {
	hit, err := s.Cache.Get(ctx, domain.CacheNSAnalytics, key, dest)
	if err != nil {
		slog.Warn("analytics cache read failed", slog.String("key", key), slog.Any("error", err))
		return false
	}
	if hit {
		observability.CacheHitsTotal.WithLabelValues(domain.CacheNSAnalytics).Inc()
	} else {
		observability.CacheMissesTotal.WithLabelValues(domain.CacheNSAnalytics).Inc()
	}
	return hit
}

func (s AnalyticsService) cacheSet(ctx domain.Context, key string, value any, ttl time.Duration) {
	if err := s.Cache.Set(ctx, domain.CacheNSAnalytics, key, value, ttl); err != nil {
		slog.Warn("analytics cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func approvalRatio(byStatus map[domain.ApplicationStatus]int64, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(byStatus[domain.StatusApproved]) / float64(total)
}
