package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/internship-tracker/internal/domain"
)

const uniqueViolation = "23505"

// ApplicationRepo persists applications and their audit entries. Mutations
// always commit the row change and its audit entry in one transaction.
type ApplicationRepo struct{ Pool PgxPool }

// NewApplicationRepo constructs an ApplicationRepo with the given pool.
func NewApplicationRepo(p PgxPool) *ApplicationRepo { return &ApplicationRepo{Pool: p} }

const applicationColumns = `id, user_id, internship_id, status, match_score, created_at, updated_at`

func scanApplication(row pgx.Row) (domain.Application, error) {
	var a domain.Application
	err := row.Scan(&a.ID, &a.UserID, &a.InternshipID, &a.Status, &a.MatchScore, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Get loads an application by id.
func (r *ApplicationRepo) Get(ctx domain.Context, id string) (domain.Application, error) {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.Get")
	defer span.End()
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE id=$1`
	a, err := scanApplication(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Application{}, fmt.Errorf("op=application.get: %w", domain.ErrNotFound)
		}
		return domain.Application{}, fmt.Errorf("op=application.get: %w", err)
	}
	return a, nil
}

// FindByUserAndInternship loads the unique application for a (user,
// internship) pair.
func (r *ApplicationRepo) FindByUserAndInternship(ctx domain.Context, userID, internshipID string) (domain.Application, error) {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.FindByUserAndInternship")
	defer span.End()
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id=$1 AND internship_id=$2`
	a, err := scanApplication(r.Pool.QueryRow(ctx, q, userID, internshipID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Application{}, fmt.Errorf("op=application.find: %w", domain.ErrNotFound)
		}
		return domain.Application{}, fmt.Errorf("op=application.find: %w", err)
	}
	return a, nil
}

// ListInternshipIDsByUser returns the internship IDs the user has an
// application for, in any status.
func (r *ApplicationRepo) ListInternshipIDsByUser(ctx domain.Context, userID string) ([]string, error) {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.ListInternshipIDsByUser")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT internship_id FROM applications WHERE user_id=$1`, userID)
	if err != nil {
		return nil, fmt.Errorf("op=application.list_internship_ids: %w", err)
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("op=application.list_internship_ids: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=application.list_internship_ids: %w", err)
	}
	return ids, nil
}

// CreateWithAudit inserts the application and its creation audit entry in
// one transaction. A unique-constraint violation on (user_id,
// internship_id) maps to domain.ErrConflict.
func (r *ApplicationRepo) CreateWithAudit(ctx domain.Context, app domain.Application, entry domain.AuditEntry) (domain.Application, error) {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.CreateWithAudit")
	defer span.End()

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Application{}, fmt.Errorf("op=application.create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = now
	}
	q := `INSERT INTO applications (id, user_id, internship_id, status, match_score, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err = tx.Exec(ctx, q, app.ID, app.UserID, app.InternshipID, app.Status, app.MatchScore, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Application{}, fmt.Errorf("op=application.create: %w", domain.ErrConflict)
		}
		return domain.Application{}, fmt.Errorf("op=application.create: %w", err)
	}
	entry.ApplicationID = app.ID
	if err := insertAudit(ctx, tx, entry); err != nil {
		return domain.Application{}, fmt.Errorf("op=application.create: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Application{}, fmt.Errorf("op=application.create: %w", err)
	}
	return app, nil
}

// TransitionWithAudit updates the status and appends the audit entry
// atomically. The update is conditional on the row still holding the
// expected from status; when a concurrent writer won the race the method
// returns domain.ErrConflict (or ErrNotFound if the row is gone).
func (r *ApplicationRepo) TransitionWithAudit(ctx domain.Context, id string, from, to domain.ApplicationStatus, entry domain.AuditEntry) (domain.Application, error) {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.TransitionWithAudit")
	defer span.End()

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Application{}, fmt.Errorf("op=application.transition: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := `UPDATE applications SET status=$3, updated_at=$4 WHERE id=$1 AND status=$2
	RETURNING ` + applicationColumns
	updated, err := scanApplication(tx.QueryRow(ctx, q, id, from, to, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the row is gone or another writer moved it first.
			var cur domain.ApplicationStatus
			probe := tx.QueryRow(ctx, `SELECT status FROM applications WHERE id=$1`, id)
			if perr := probe.Scan(&cur); perr != nil {
				return domain.Application{}, fmt.Errorf("op=application.transition: %w", domain.ErrNotFound)
			}
			return domain.Application{}, fmt.Errorf("op=application.transition: status moved to %s: %w", cur, domain.ErrConflict)
		}
		return domain.Application{}, fmt.Errorf("op=application.transition: %w", err)
	}
	entry.ApplicationID = id
	if err := insertAudit(ctx, tx, entry); err != nil {
		return domain.Application{}, fmt.Errorf("op=application.transition: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Application{}, fmt.Errorf("op=application.transition: %w", err)
	}
	return updated, nil
}

// DeleteWithAudit appends the cancellation audit entry and then deletes
// the application row, in one transaction. Audit rows are never cascaded,
// so the trail survives the delete.
func (r *ApplicationRepo) DeleteWithAudit(ctx domain.Context, id string, entry domain.AuditEntry) error {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.DeleteWithAudit")
	defer span.End()

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("op=application.delete: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	entry.ApplicationID = id
	if err := insertAudit(ctx, tx, entry); err != nil {
		return fmt.Errorf("op=application.delete: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM applications WHERE id=$1 AND status=$2`, id, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("op=application.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Raced with a transition out of pending; roll everything back.
		return fmt.Errorf("op=application.delete: %w", domain.ErrConflict)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("op=application.delete: %w", err)
	}
	return nil
}

// insertAudit appends one audit entry inside the caller's transaction.
// IDs are ULIDs so the trail stays lexicographically time-ordered.
func insertAudit(ctx context.Context, tx pgx.Tx, entry domain.AuditEntry) error {
	id := entry.ID
	if id == "" {
		id = ulid.Make().String()
	}
	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	q := `INSERT INTO audit_entries (id, application_id, from_status, to_status, actor_id, actor_type, notes, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := tx.Exec(ctx, q, id, entry.ApplicationID, entry.FromStatus, entry.ToStatus, entry.ActorID, entry.ActorType, entry.Notes, created)
	return err
}
