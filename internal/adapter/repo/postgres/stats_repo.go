package postgres

import (
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/internship-tracker/internal/domain"
)

// StatsRepo serves the read-only analytics queries over applications.
type StatsRepo struct{ Pool PgxPool }

// NewStatsRepo constructs a StatsRepo with the given pool.
func NewStatsRepo(p PgxPool) *StatsRepo { return &StatsRepo{Pool: p} }

// CountByStatus counts all applications grouped by status.
func (r *StatsRepo) CountByStatus(ctx domain.Context) (map[domain.ApplicationStatus]int64, error) {
	tracer := otel.Tracer("repo.stats")
	ctx, span := tracer.Start(ctx, "stats.CountByStatus")
	defer span.End()
	return r.countByStatus(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
}

// CountByStatusForUser counts one user's applications grouped by status.
func (r *StatsRepo) CountByStatusForUser(ctx domain.Context, userID string) (map[domain.ApplicationStatus]int64, error) {
	tracer := otel.Tracer("repo.stats")
	ctx, span := tracer.Start(ctx, "stats.CountByStatusForUser")
	defer span.End()
	return r.countByStatus(ctx, `SELECT status, COUNT(*) FROM applications WHERE user_id=$1 GROUP BY status`, userID)
}

func (r *StatsRepo) countByStatus(ctx domain.Context, q string, args ...any) (map[domain.ApplicationStatus]int64, error) {
	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("op=stats.count_by_status: %w", err)
	}
	defer rows.Close()
	out := make(map[domain.ApplicationStatus]int64)
	for rows.Next() {
		var s domain.ApplicationStatus
		var c int64
		if err := rows.Scan(&s, &c); err != nil {
			return nil, fmt.Errorf("op=stats.count_by_status: %w", err)
		}
		out[s] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=stats.count_by_status: %w", err)
	}
	return out, nil
}

// AvgMatchScoreForUser averages the user's persisted match scores; zero
// when the user has no applications.
func (r *StatsRepo) AvgMatchScoreForUser(ctx domain.Context, userID string) (float64, error) {
	tracer := otel.Tracer("repo.stats")
	ctx, span := tracer.Start(ctx, "stats.AvgMatchScoreForUser")
	defer span.End()
	q := `SELECT COALESCE(AVG(match_score), 0) FROM applications WHERE user_id=$1`
	var avg float64
	if err := r.Pool.QueryRow(ctx, q, userID).Scan(&avg); err != nil {
		return 0, fmt.Errorf("op=stats.avg_match_score: %w", err)
	}
	return avg, nil
}

// ScoreDistribution buckets persisted match scores by decile, keyed by the
// bucket's lower bound; 100 folds into the 90 bucket.
func (r *StatsRepo) ScoreDistribution(ctx domain.Context) (map[int]int64, error) {
	tracer := otel.Tracer("repo.stats")
	ctx, span := tracer.Start(ctx, "stats.ScoreDistribution")
	defer span.End()
	q := `SELECT LEAST(FLOOR(match_score/10)*10, 90)::int AS bucket, COUNT(*)
	FROM applications GROUP BY bucket`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=stats.score_distribution: %w", err)
	}
	defer rows.Close()
	out := make(map[int]int64)
	for rows.Next() {
		var bucket int
		var c int64
		if err := rows.Scan(&bucket, &c); err != nil {
			return nil, fmt.Errorf("op=stats.score_distribution: %w", err)
		}
		out[bucket] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=stats.score_distribution: %w", err)
	}
	return out, nil
}

// ApplicationsPerInternship returns the most applied-to internships.
func (r *StatsRepo) ApplicationsPerInternship(ctx domain.Context, limit int) ([]domain.InternshipCount, error) {
	tracer := otel.Tracer("repo.stats")
	ctx, span := tracer.Start(ctx, "stats.ApplicationsPerInternship")
	defer span.End()
	q := `SELECT a.internship_id, i.title, i.organization, COUNT(*) AS applications
	FROM applications a JOIN internships i ON i.id = a.internship_id
	GROUP BY a.internship_id, i.title, i.organization
	ORDER BY applications DESC, a.internship_id ASC LIMIT $1`
	rows, err := r.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("op=stats.per_internship: %w", err)
	}
	defer rows.Close()
	out := make([]domain.InternshipCount, 0, limit)
	for rows.Next() {
		var c domain.InternshipCount
		if err := rows.Scan(&c.InternshipID, &c.Title, &c.Organization, &c.Count); err != nil {
			return nil, fmt.Errorf("op=stats.per_internship: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=stats.per_internship: %w", err)
	}
	return out, nil
}

// TopPerformingInternships ranks internships that approved at least one
// application, by approved count then average match score.
func (r *StatsRepo) TopPerformingInternships(ctx domain.Context, limit int) ([]domain.InternshipPerformance, error) {
	tracer := otel.Tracer("repo.stats")
	ctx, span := tracer.Start(ctx, "stats.TopPerformingInternships")
	defer span.End()
	q := `SELECT a.internship_id, i.title, i.organization,
		COUNT(*) FILTER (WHERE a.status = $1) AS approved,
		COALESCE(AVG(a.match_score), 0) AS avg_score
	FROM applications a JOIN internships i ON i.id = a.internship_id
	GROUP BY a.internship_id, i.title, i.organization
	HAVING COUNT(*) FILTER (WHERE a.status = $1) > 0
	ORDER BY approved DESC, avg_score DESC, a.internship_id ASC LIMIT $2`
	rows, err := r.Pool.Query(ctx, q, domain.StatusApproved, limit)
	if err != nil {
		return nil, fmt.Errorf("op=stats.top_performing: %w", err)
	}
	defer rows.Close()
	out := make([]domain.InternshipPerformance, 0, limit)
	for rows.Next() {
		var p domain.InternshipPerformance
		if err := rows.Scan(&p.InternshipID, &p.Title, &p.Organization, &p.ApprovedCount, &p.AvgMatchScore); err != nil {
			return nil, fmt.Errorf("op=stats.top_performing: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=stats.top_performing: %w", err)
	}
	return out, nil
}
