package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/internship-tracker/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/internship-tracker/internal/domain"
)

func TestProfileRepo_GetByUserID_NormalizesSkills(t *testing.T) {
	t.Parallel()
	pool := &poolStub{row: rowStub{scan: func(dest ...any) error {
		*dest[0].(*string) = "p-1"
		*dest[1].(*string) = "u-1"
		*dest[2].(*[]string) = []string{" Python ", "python", "Django"}
		*dest[3].(*string) = "BSc CS"
		*dest[4].(*string) = "backend"
		*dest[5].(*time.Time) = time.Now()
		*dest[6].(*time.Time) = time.Now()
		return nil
	}}}
	repo := postgres.NewProfileRepo(pool)

	p, err := repo.GetByUserID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, []string{"django", "python"}, p.Skills)
	assert.Equal(t, "BSc CS", p.AcademicBackground)
}

func TestProfileRepo_GetByUserID_NotFound(t *testing.T) {
	t.Parallel()
	repo := postgres.NewProfileRepo(&poolStub{row: rowStub{scan: func(_ ...any) error { return pgx.ErrNoRows }}})
	_, err := repo.GetByUserID(context.Background(), "u-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
