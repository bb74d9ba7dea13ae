package postgres

import (
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/internship-tracker/internal/domain"
)

// AuditRepo reads the append-only audit trail. It exposes no update or
// delete operations.
type AuditRepo struct{ Pool PgxPool }

// NewAuditRepo constructs an AuditRepo with the given pool.
func NewAuditRepo(p PgxPool) *AuditRepo { return &AuditRepo{Pool: p} }

// ListByApplication returns the application's entries ordered by
// created_at ascending, ULID ascending for same-timestamp entries.
func (r *AuditRepo) ListByApplication(ctx domain.Context, applicationID string) ([]domain.AuditEntry, error) {
	tracer := otel.Tracer("repo.audit")
	ctx, span := tracer.Start(ctx, "audit.ListByApplication")
	defer span.End()
	q := `SELECT id, application_id, from_status, to_status, actor_id, actor_type, COALESCE(notes,''), created_at
	FROM audit_entries WHERE application_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.Pool.Query(ctx, q, applicationID)
	if err != nil {
		return nil, fmt.Errorf("op=audit.list: %w", err)
	}
	defer rows.Close()
	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.FromStatus, &e.ToStatus, &e.ActorID, &e.ActorType, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=audit.list: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=audit.list: %w", err)
	}
	return entries, nil
}

// TransitionDurations averages, per (from, to) pair, the time between an
// entry and the previous entry of the same application, i.e. the dwell time in
// from before moving to to.
func (r *AuditRepo) TransitionDurations(ctx domain.Context) ([]domain.TransitionDuration, error) {
	tracer := otel.Tracer("repo.audit")
	ctx, span := tracer.Start(ctx, "audit.TransitionDurations")
	defer span.End()
	q := `SELECT from_status, to_status, AVG(delta_seconds), COUNT(*) FROM (
		SELECT from_status, to_status,
			EXTRACT(EPOCH FROM (created_at - LAG(created_at) OVER (PARTITION BY application_id ORDER BY created_at, id))) AS delta_seconds
		FROM audit_entries
	) t
	WHERE from_status IS NOT NULL AND delta_seconds IS NOT NULL
	GROUP BY from_status, to_status
	ORDER BY from_status, to_status`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=audit.transition_durations: %w", err)
	}
	defer rows.Close()
	out := make([]domain.TransitionDuration, 0)
	for rows.Next() {
		var d domain.TransitionDuration
		if err := rows.Scan(&d.From, &d.To, &d.AvgSeconds, &d.Samples); err != nil {
			return nil, fmt.Errorf("op=audit.transition_durations: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=audit.transition_durations: %w", err)
	}
	return out, nil
}
