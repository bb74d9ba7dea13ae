// Package usecase contains the application business logic services:
// submission and lifecycle of applications, recommendations, and
// analytics aggregation.
package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/internship-tracker/internal/adapter/observability"
	"github.com/fairyhunter13/internship-tracker/internal/domain"
	"github.com/fairyhunter13/internship-tracker/internal/service/match"
)

// ApplicationService drives the application lifecycle: submit, transition,
// cancel, and audit-trail reads. Every mutation commits atomically with
// its audit entry, then invalidates derived caches and publishes an event.
type ApplicationService struct {
	Apps        domain.ApplicationRepository
	Internships domain.InternshipRepository
	Profiles    domain.ProfileRepository
	Audit       domain.AuditRepository
	Scorer      *match.Scorer
	Cache       domain.Cache
	Events      domain.EventPublisher
	Flags       domain.FeatureFlags
}

// NewApplicationService constructs an ApplicationService with its dependencies.
func NewApplicationService(
	apps domain.ApplicationRepository,
	internships domain.InternshipRepository,
	profiles domain.ProfileRepository,
	audit domain.AuditRepository,
	scorer *match.Scorer,
	cache domain.Cache,
	events domain.EventPublisher,
	flags domain.FeatureFlags,
) ApplicationService {
	return ApplicationService{
		Apps:        apps,
		Internships: internships,
		Profiles:    profiles,
		Audit:       audit,
		Scorer:      scorer,
		Cache:       cache,
		Events:      events,
		Flags:       flags,
	}
}

// Submit creates a pending application for the acting student on the given
// internship, scoring it against the student's profile. The application
// row and its creation audit entry commit in one transaction.
func (s ApplicationService) Submit(ctx domain.Context, actor domain.Actor, internshipID string) (domain.Application, error) {
	tracer := otel.Tracer("usecase.application")
	ctx, span := tracer.Start(ctx, "application.Submit")
	defer span.End()

	if actor.ID == "" || internshipID == "" {
		return domain.Application{}, fmt.Errorf("%w: actor and internship ids required", domain.ErrInvalidArgument)
	}
	if actor.Type != domain.ActorStudent {
		return domain.Application{}, fmt.Errorf("%w: only students may apply", domain.ErrUnauthorized)
	}
	if !s.Flags.IsEnabled(domain.FlagSubmissionsEnabled) {
		return domain.Application{}, fmt.Errorf("%w: submissions are currently disabled", domain.ErrBusinessRule)
	}

	internship, err := s.Internships.Get(ctx, internshipID)
	if err != nil {
		return domain.Application{}, err
	}
	if !internship.IsActive {
		return domain.Application{}, fmt.Errorf("%w: internship is not active", domain.ErrBusinessRule)
	}

	if _, err := s.Apps.FindByUserAndInternship(ctx, actor.ID, internshipID); err == nil {
		return domain.Application{}, fmt.Errorf("%w: application already exists", domain.ErrBusinessRule)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Application{}, err
	}

	// A missing profile scores as an empty one; submission is still allowed.
	profile, err := s.Profiles.GetByUserID(ctx, actor.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Application{}, err
	}
	result := s.Scorer.Score(profile, internship)

	now := time.Now().UTC()
	app := domain.Application{
		ID:           uuid.New().String(),
		UserID:       actor.ID,
		InternshipID: internshipID,
		Status:       domain.StatusPending,
		MatchScore:   result.Percent(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	entry := domain.AuditEntry{
		ApplicationID: app.ID,
		FromStatus:    nil,
		ToStatus:      domain.StatusPending,
		ActorID:       actor.ID,
		ActorType:     actor.Type,
		CreatedAt:     now,
	}

	created, err := s.Apps.CreateWithAudit(ctx, app, entry)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Concurrent duplicate submit lost the unique-constraint race.
			return domain.Application{}, fmt.Errorf("%w: application already exists", domain.ErrBusinessRule)
		}
		slog.Error("submit failed",
			slog.String("actor_id", actor.ID),
			slog.String("action", "submit"),
			slog.String("internship_id", internshipID),
			slog.Any("error", err))
		return domain.Application{}, err
	}

	observability.ApplicationsSubmittedTotal.Inc()
	observability.MatchScoreHistogram.Observe(result.Score)

	s.invalidateDerived(ctx, created.UserID)
	if err := s.Events.PublishApplicationSubmitted(ctx, domain.ApplicationSubmitted{
		Application: created,
		OccurredAt:  now,
	}); err != nil {
		slog.Warn("application submitted event publish failed",
			slog.String("application_id", created.ID), slog.Any("error", err))
	}
	return created, nil
}

// Transition moves an application to newStatus if the move is legal on the
// transition graph. The status update and its audit entry commit together;
// a concurrent writer winning the race surfaces as domain.ErrConflict.
func (s ApplicationService) Transition(ctx domain.Context, actor domain.Actor, applicationID string, newStatus domain.ApplicationStatus, notes string) (domain.Application, error) {
	tracer := otel.Tracer("usecase.application")
	ctx, span := tracer.Start(ctx, "application.Transition")
	defer span.End()

	if applicationID == "" {
		return domain.Application{}, fmt.Errorf("%w: application id required", domain.ErrInvalidArgument)
	}
	if !newStatus.Valid() {
		return domain.Application{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidArgument, newStatus)
	}
	if actor.Type != domain.ActorAdmin && actor.Type != domain.ActorSystem {
		return domain.Application{}, fmt.Errorf("%w: only admins may review applications", domain.ErrUnauthorized)
	}

	app, err := s.Apps.Get(ctx, applicationID)
	if err != nil {
		return domain.Application{}, err
	}
	if !app.Status.CanTransitionTo(newStatus) {
		return domain.Application{}, domain.NewInvalidTransition(app.Status, newStatus)
	}

	now := time.Now().UTC()
	from := app.Status
	entry := domain.AuditEntry{
		ApplicationID: app.ID,
		FromStatus:    &from,
		ToStatus:      newStatus,
		ActorID:       actor.ID,
		ActorType:     actor.Type,
		Notes:         notes,
		CreatedAt:     now,
	}

	updated, err := s.Apps.TransitionWithAudit(ctx, app.ID, from, newStatus, entry)
	if err != nil {
		slog.Error("transition failed",
			slog.String("actor_id", actor.ID),
			slog.String("action", "transition"),
			slog.String("application_id", app.ID),
			slog.String("from", string(from)),
			slog.String("to", string(newStatus)),
			slog.Any("error", err))
		return domain.Application{}, err
	}

	observability.ApplicationTransitionsTotal.WithLabelValues(string(from), string(newStatus)).Inc()

	s.invalidateDerived(ctx, updated.UserID)
	if err := s.Events.PublishApplicationStatusChanged(ctx, domain.ApplicationStatusChanged{
		Application: updated,
		From:        from,
		To:          newStatus,
		Actor:       actor,
		OccurredAt:  now,
	}); err != nil {
		slog.Warn("status changed event publish failed",
			slog.String("application_id", updated.ID), slog.Any("error", err))
	}
	return updated, nil
}

// Cancel withdraws a pending application. Only the owning student may
// cancel, and only while the application is still pending. The
// cancellation audit entry is written before the row is deleted, in the
// same transaction, so the trail survives the delete.
func (s ApplicationService) Cancel(ctx domain.Context, actor domain.Actor, applicationID string) error {
	tracer := otel.Tracer("usecase.application")
	ctx, span := tracer.Start(ctx, "application.Cancel")
	defer span.End()

	app, err := s.Apps.Get(ctx, applicationID)
	if err != nil {
		return err
	}
	if actor.Type != domain.ActorStudent || actor.ID != app.UserID {
		return fmt.Errorf("%w: only the applicant may cancel", domain.ErrUnauthorized)
	}
	if app.Status != domain.StatusPending {
		return fmt.Errorf("%w: only pending applications can be cancelled", domain.ErrBusinessRule)
	}

	now := time.Now().UTC()
	from := app.Status
	entry := domain.AuditEntry{
		ApplicationID: app.ID,
		FromStatus:    &from,
		ToStatus:      domain.StatusRejected,
		ActorID:       actor.ID,
		ActorType:     actor.Type,
		Notes:         "cancelled by student",
		CreatedAt:     now,
	}
	if err := s.Apps.DeleteWithAudit(ctx, app.ID, entry); err != nil {
		slog.Error("cancel failed",
			slog.String("actor_id", actor.ID),
			slog.String("action", "cancel"),
			slog.String("application_id", app.ID),
			slog.Any("error", err))
		return err
	}

	observability.ApplicationsCancelledTotal.Inc()

	s.invalidateDerived(ctx, app.UserID)
	if err := s.Events.PublishApplicationStatusChanged(ctx, domain.ApplicationStatusChanged{
		Application: app,
		From:        from,
		To:          domain.StatusRejected,
		Actor:       actor,
		OccurredAt:  now,
	}); err != nil {
		slog.Warn("status changed event publish failed",
			slog.String("application_id", app.ID), slog.Any("error", err))
	}
	return nil
}

// History returns the application's audit trail, oldest first.
func (s ApplicationService) History(ctx domain.Context, applicationID string) ([]domain.AuditEntry, error) {
	if applicationID == "" {
		return nil, fmt.Errorf("%w: application id required", domain.ErrInvalidArgument)
	}
	return s.Audit.ListByApplication(ctx, applicationID)
}

// invalidateDerived drops the caches that depend on the user's application
// data. It runs after the transaction commits; cache failures are logged
// and never surfaced.
func (s ApplicationService) invalidateDerived(ctx domain.Context, userID string) {
	if err := s.Cache.Invalidate(ctx, domain.CacheNSRecommendations, userID); err != nil {
		slog.Warn("recommendation cache invalidation failed",
			slog.String("user_id", userID), slog.Any("error", err))
	}
	if err := s.Cache.InvalidateAll(ctx, domain.CacheNSAnalytics); err != nil {
		slog.Warn("analytics cache invalidation failed", slog.Any("error", err))
	}
}
