package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/internship-tracker/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/internship-tracker/internal/domain"
)

func TestStatsRepo_CountByStatus(t *testing.T) {
	t.Parallel()
	rows := &rowsStub{rows: []func(dest ...any) error{
		func(dest ...any) error {
			*dest[0].(*domain.ApplicationStatus) = domain.StatusPending
			*dest[1].(*int64) = 4
			return nil
		},
		func(dest ...any) error {
			*dest[0].(*domain.ApplicationStatus) = domain.StatusApproved
			*dest[1].(*int64) = 2
			return nil
		},
	}}
	repo := postgres.NewStatsRepo(&poolStub{rows: rows})

	got, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[domain.ApplicationStatus]int64{
		domain.StatusPending:  4,
		domain.StatusApproved: 2,
	}, got)
}

func TestStatsRepo_AvgMatchScoreForUser(t *testing.T) {
	t.Parallel()
	pool := &poolStub{row: rowStub{scan: func(dest ...any) error {
		*dest[0].(*float64) = 72.5
		return nil
	}}}
	repo := postgres.NewStatsRepo(pool)

	avg, err := repo.AvgMatchScoreForUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.InDelta(t, 72.5, avg, 1e-9)
}

func TestStatsRepo_ScoreDistribution(t *testing.T) {
	t.Parallel()
	rows := &rowsStub{rows: []func(dest ...any) error{
		func(dest ...any) error { *dest[0].(*int) = 50; *dest[1].(*int64) = 3; return nil },
		func(dest ...any) error { *dest[0].(*int) = 90; *dest[1].(*int64) = 5; return nil },
	}}
	repo := postgres.NewStatsRepo(&poolStub{rows: rows})

	got, err := repo.ScoreDistribution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{50: 3, 90: 5}, got)
}

func TestStatsRepo_TopPerformingInternships(t *testing.T) {
	t.Parallel()
	rows := &rowsStub{rows: []func(dest ...any) error{
		func(dest ...any) error {
			*dest[0].(*string) = "in-1"
			*dest[1].(*string) = "Backend Intern"
			*dest[2].(*string) = "Acme"
			*dest[3].(*int64) = 3
			*dest[4].(*float64) = 81
			return nil
		},
	}}
	repo := postgres.NewStatsRepo(&poolStub{rows: rows})

	got, err := repo.TopPerformingInternships(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ApprovedCount)
	assert.InDelta(t, 81.0, got[0].AvgMatchScore, 1e-9)
}

func TestStatsRepo_QueryError(t *testing.T) {
	t.Parallel()
	repo := postgres.NewStatsRepo(&poolStub{queryErr: assert.AnError})
	_, err := repo.CountByStatus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=stats.count_by_status")
}
