package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/internship-tracker/internal/domain"
)

// InternshipRepo reads internships. They are owned by the
// internship-management subsystem; this core never writes them.
type InternshipRepo struct{ Pool PgxPool }

// NewInternshipRepo constructs an InternshipRepo with the given pool.
func NewInternshipRepo(p PgxPool) *InternshipRepo { return &InternshipRepo{Pool: p} }

const internshipColumns = `id, title, organization, required_skills, is_active, created_at`

func scanInternship(row pgx.Row) (domain.Internship, error) {
	var in domain.Internship
	err := row.Scan(&in.ID, &in.Title, &in.Organization, &in.RequiredSkills, &in.IsActive, &in.CreatedAt)
	return in, err
}

// Get loads an internship by id.
func (r *InternshipRepo) Get(ctx domain.Context, id string) (domain.Internship, error) {
	tracer := otel.Tracer("repo.internships")
	ctx, span := tracer.Start(ctx, "internships.Get")
	defer span.End()
	q := `SELECT ` + internshipColumns + ` FROM internships WHERE id=$1`
	in, err := scanInternship(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Internship{}, fmt.Errorf("op=internship.get: %w", domain.ErrNotFound)
		}
		return domain.Internship{}, fmt.Errorf("op=internship.get: %w", err)
	}
	return in, nil
}

// ListActiveExcluding returns all active internships not in excludeIDs,
// ordered by ID ascending so scoring order (and the score tie-break) stays
// deterministic.
func (r *InternshipRepo) ListActiveExcluding(ctx domain.Context, excludeIDs []string) ([]domain.Internship, error) {
	tracer := otel.Tracer("repo.internships")
	ctx, span := tracer.Start(ctx, "internships.ListActiveExcluding")
	defer span.End()
	q := `SELECT ` + internshipColumns + ` FROM internships
	WHERE is_active AND NOT (id = ANY($1)) ORDER BY id ASC`
	return r.list(ctx, q, excludeSet(excludeIDs))
}

// ListRecentActiveExcluding returns up to limit active internships not in
// excludeIDs, most recently created first. Used for fallback fill.
func (r *InternshipRepo) ListRecentActiveExcluding(ctx domain.Context, excludeIDs []string, limit int) ([]domain.Internship, error) {
	tracer := otel.Tracer("repo.internships")
	ctx, span := tracer.Start(ctx, "internships.ListRecentActiveExcluding")
	defer span.End()
	q := `SELECT ` + internshipColumns + ` FROM internships
	WHERE is_active AND NOT (id = ANY($1)) ORDER BY created_at DESC, id ASC LIMIT $2`
	return r.list(ctx, q, excludeSet(excludeIDs), limit)
}

func (r *InternshipRepo) list(ctx domain.Context, q string, args ...any) ([]domain.Internship, error) {
	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("op=internship.list: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Internship, 0)
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("op=internship.list: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=internship.list: %w", err)
	}
	return out, nil
}

// excludeSet keeps ANY($1) well-typed for an empty exclusion list.
func excludeSet(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
