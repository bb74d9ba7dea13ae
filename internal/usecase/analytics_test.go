package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/internship-tracker/internal/domain"
	"github.com/fairyhunter13/internship-tracker/internal/usecase"
)

func newAnalyticsFixture(cache *memCache) (usecase.AnalyticsService, *stubStats, *stubAudit) {
	stats := &stubStats{
		byStatus: map[domain.ApplicationStatus]int64{
			domain.StatusPending:  4,
			domain.StatusApproved: 2,
			domain.StatusRejected: 2,
		},
		userByStatus: map[domain.ApplicationStatus]int64{
			domain.StatusPending:  1,
			domain.StatusApproved: 1,
		},
		avgScore:     72.5,
		distribution: map[int]int64{50: 3, 90: 5},
		counts: []domain.InternshipCount{
			{InternshipID: "in-1", Title: "Backend Intern", Count: 6},
			{InternshipID: "in-2", Title: "Data Intern", Count: 2},
		},
		performance: []domain.InternshipPerformance{
			{InternshipID: "in-1", ApprovedCount: 2, AvgMatchScore: 81},
		},
	}
	audit := &stubAudit{durations: []domain.TransitionDuration{
		{From: domain.StatusPending, To: domain.StatusUnderReview, AvgSeconds: 3600, Samples: 8},
	}}
	svc := usecase.NewAnalyticsService(stats, audit, cache, time.Minute, 2*time.Minute)
	return svc, stats, audit
}

func TestGetOverallStats(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAnalyticsFixture(newMemCache())

	stats, err := svc.GetOverallStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8), stats.Total)
	assert.Equal(t, int64(4), stats.ByStatus[domain.StatusPending])
	assert.InDelta(t, 0.25, stats.ApprovalRatio, 1e-9)
	assert.Equal(t, int64(5), stats.ScoreDistribution[90])
}

func TestGetOverallStats_SecondCallServedFromCache(t *testing.T) {
	t.Parallel()
	svc, stats, _ := newAnalyticsFixture(newMemCache())

	first, err := svc.GetOverallStats(context.Background())
	require.NoError(t, err)
	callsAfterFirst := stats.countCalls

	second, err := svc.GetOverallStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, stats.countCalls)
}

func TestGetStatusBreakdown(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAnalyticsFixture(newMemCache())
	breakdown, err := svc.GetStatusBreakdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), breakdown[domain.StatusApproved])
}

func TestGetApprovalRatio(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAnalyticsFixture(newMemCache())
	ratio, err := svc.GetApprovalRatio(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.25, ratio, 1e-9)
}

func TestGetApprovalRatio_ZeroApplications(t *testing.T) {
	t.Parallel()
	svc, stats, _ := newAnalyticsFixture(newMemCache())
	stats.byStatus = map[domain.ApplicationStatus]int64{}
	ratio, err := svc.GetApprovalRatio(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ratio)
}

func TestGetUserStats(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAnalyticsFixture(newMemCache())
	stats, err := svc.GetUserStats(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", stats.UserID)
	assert.Equal(t, int64(2), stats.Total)
	assert.InDelta(t, 72.5, stats.AvgMatchScore, 1e-9)
}

func TestGetUserStats_RequiresID(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAnalyticsFixture(newMemCache())
	_, err := svc.GetUserStats(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetApplicationsPerInternship(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAnalyticsFixture(newMemCache())
	counts, err := svc.GetApplicationsPerInternship(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, "in-1", counts[0].InternshipID)

	_, err = svc.GetApplicationsPerInternship(context.Background(), 0)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetTopPerformingInternships(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAnalyticsFixture(newMemCache())
	perf, err := svc.GetTopPerformingInternships(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, perf, 1)
	assert.Equal(t, int64(2), perf[0].ApprovedCount)

	_, err = svc.GetTopPerformingInternships(context.Background(), -1)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetTransitionDurations_UsesLongerTTL(t *testing.T) {
	t.Parallel()
	cache := newMemCache()
	svc, _, audit := newAnalyticsFixture(cache)

	durations, err := svc.GetTransitionDurations(context.Background())
	require.NoError(t, err)
	require.Len(t, durations, 1)
	assert.Equal(t, 2*time.Minute, cache.ttls[domain.CacheNSAnalytics+":transition_durations"])

	_, err = svc.GetTransitionDurations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, audit.calls)
}

func TestNewAnalyticsService_DefaultTTLs(t *testing.T) {
	t.Parallel()
	svc := usecase.NewAnalyticsService(nil, nil, nil, 0, 0)
	assert.Equal(t, usecase.DefaultAnalyticsTTL, svc.TTL)
	assert.Equal(t, usecase.DefaultDurationsTTL, svc.DurationsTTL)
}
