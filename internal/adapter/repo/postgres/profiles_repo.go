package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/internship-tracker/internal/domain"
	"github.com/fairyhunter13/internship-tracker/pkg/skillx"
)

// ProfileRepo reads student profiles. Profiles are owned by the user
// subsystem; this core never writes them.
type ProfileRepo struct{ Pool PgxPool }

// NewProfileRepo constructs a ProfileRepo with the given pool.
func NewProfileRepo(p PgxPool) *ProfileRepo { return &ProfileRepo{Pool: p} }

// GetByUserID loads the profile owned by userID. Skills are normalized at
// this boundary so everything downstream sees a canonical set.
func (r *ProfileRepo) GetByUserID(ctx domain.Context, userID string) (domain.Profile, error) {
	tracer := otel.Tracer("repo.profiles")
	ctx, span := tracer.Start(ctx, "profiles.GetByUserID")
	defer span.End()
	q := `SELECT id, user_id, skills, COALESCE(academic_background,''), COALESCE(career_interests,''), created_at, updated_at
	FROM profiles WHERE user_id=$1`
	row := r.Pool.QueryRow(ctx, q, userID)
	var p domain.Profile
	var skills []string
	if err := row.Scan(&p.ID, &p.UserID, &skills, &p.AcademicBackground, &p.CareerInterests, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, fmt.Errorf("op=profile.get: %w", domain.ErrNotFound)
		}
		return domain.Profile{}, fmt.Errorf("op=profile.get: %w", err)
	}
	p.Skills = skillx.Normalize(skills)
	return p, nil
}
