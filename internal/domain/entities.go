// Package domain defines the core entities and ports for the internship
// application tracker: profiles, internships, applications, the audit
// trail, and the cache/event/flag interfaces the outer layers implement.
package domain

import (
	"context"
	"time"
)

// ActorType identifies who performed an action on an application.
type ActorType string

const (
	ActorStudent ActorType = "student"
	ActorAdmin   ActorType = "admin"
	ActorSystem  ActorType = "system"
)

// Actor is the identity a mutating operation runs as.
type Actor struct {
	ID   string
	Type ActorType
}

// Profile holds a student's matchable attributes. Skills are stored
// normalized (lowercase, trimmed, deduplicated).
type Profile struct {
	ID                 string
	UserID             string
	Skills             []string
	AcademicBackground string
	CareerInterests    string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasSkills reports whether the profile carries at least one skill.
func (p Profile) HasSkills() bool { return len(p.Skills) > 0 }

// Internship is read-only from this core's perspective; it is owned by the
// internship-management subsystem. RequiredSkills keeps source order: the
// first three entries are core skills, the rest optional.
type Internship struct {
	ID             string
	Title          string
	Organization   string
	RequiredSkills []string
	IsActive       bool
	CreatedAt      time.Time
}

// Application tracks one student's application to one internship.
// Invariants: at most one Application per (UserID, InternshipID);
// Status only moves along the transition graph in status.go.
type Application struct {
	ID           string
	UserID       string
	InternshipID string
	Status       ApplicationStatus
	// MatchScore is the persisted percentage form of the match score,
	// rounded to whole percent, in [0,100].
	MatchScore float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AuditEntry is one immutable record in an application's audit trail.
// FromStatus is nil for the creation entry.
type AuditEntry struct {
	ID            string
	ApplicationID string
	FromStatus    *ApplicationStatus
	ToStatus      ApplicationStatus
	ActorID       string
	ActorType     ActorType
	Notes         string
	CreatedAt     time.Time
}

// TransitionDuration aggregates how long applications spend between two
// consecutive statuses, across all applications.
type TransitionDuration struct {
	From       ApplicationStatus
	To         ApplicationStatus
	AvgSeconds float64
	Samples    int64
}

// Repositories (ports)

type ProfileRepository interface {
	GetByUserID(ctx Context, userID string) (Profile, error)
}

type InternshipRepository interface {
	Get(ctx Context, id string) (Internship, error)
	// ListActiveExcluding returns all active internships whose ID is not in
	// excludeIDs, ordered by ID ascending for deterministic scoring order.
	ListActiveExcluding(ctx Context, excludeIDs []string) ([]Internship, error)
	// ListRecentActiveExcluding returns up to limit active internships not in
	// excludeIDs, most recently created first. Used for fallback fill.
	ListRecentActiveExcluding(ctx Context, excludeIDs []string, limit int) ([]Internship, error)
}

type ApplicationRepository interface {
	Get(ctx Context, id string) (Application, error)
	FindByUserAndInternship(ctx Context, userID, internshipID string) (Application, error)
	// ListInternshipIDsByUser returns the internship IDs the user has any
	// application for, regardless of status.
	ListInternshipIDsByUser(ctx Context, userID string) ([]string, error)
	// CreateWithAudit atomically inserts the application and its creation
	// audit entry; both or neither are persisted.
	CreateWithAudit(ctx Context, app Application, entry AuditEntry) (Application, error)
	// TransitionWithAudit atomically moves the application from one status to
	// another and appends the audit entry. The update is conditional on the
	// row still holding the from status; a lost race yields ErrConflict.
	TransitionWithAudit(ctx Context, id string, from, to ApplicationStatus, entry AuditEntry) (Application, error)
	// DeleteWithAudit appends the audit entry, then deletes the application
	// row, in one transaction. The entry survives the delete.
	DeleteWithAudit(ctx Context, id string, entry AuditEntry) error
}

type AuditRepository interface {
	ListByApplication(ctx Context, applicationID string) ([]AuditEntry, error)
	// TransitionDurations computes the average time spent between consecutive
	// transitions, grouped by (from, to), across all applications.
	TransitionDurations(ctx Context) ([]TransitionDuration, error)
}

// StatsRepository serves the read-only analytics queries.
type StatsRepository interface {
	CountByStatus(ctx Context) (map[ApplicationStatus]int64, error)
	CountByStatusForUser(ctx Context, userID string) (map[ApplicationStatus]int64, error)
	AvgMatchScoreForUser(ctx Context, userID string) (float64, error)
	// ScoreDistribution buckets persisted match scores by decile and returns
	// counts indexed by bucket lower bound (0, 10, ..., 90).
	ScoreDistribution(ctx Context) (map[int]int64, error)
	ApplicationsPerInternship(ctx Context, limit int) ([]InternshipCount, error)
	// TopPerformingInternships ranks internships by approved-application
	// count, then by average match score.
	TopPerformingInternships(ctx Context, limit int) ([]InternshipPerformance, error)
}

// InternshipCount pairs an internship with its application volume.
type InternshipCount struct {
	InternshipID string
	Title        string
	Organization string
	Count        int64
}

// InternshipPerformance ranks an internship by hiring outcome.
type InternshipPerformance struct {
	InternshipID  string
	Title         string
	Organization  string
	ApprovedCount int64
	AvgMatchScore float64
}

// Cache (port)
//
// Namespaced key-value cache with per-entry TTL. Implementations must be
// safe for concurrent use and must degrade to always-miss when the backing
// store is unavailable; cache failures never fail the caller's operation.
type Cache interface {
	// Get unmarshals the cached value into dest and reports whether a fresh
	// entry was found.
	Get(ctx Context, namespace, key string, dest any) (bool, error)
	Set(ctx Context, namespace, key string, value any, ttl time.Duration) error
	Invalidate(ctx Context, namespace, key string) error
	InvalidateAll(ctx Context, namespace string) error
}

// Cache namespaces used by the core.
const (
	CacheNSRecommendations = "recommendations"
	CacheNSAnalytics       = "analytics"
)

// EventPublisher (port)
//
// Outbound domain events consumed asynchronously by notification code
// outside this core. Publish failures are logged by callers, never
// surfaced: the core has no dependency on whether a subscriber exists.
type EventPublisher interface {
	PublishApplicationSubmitted(ctx Context, ev ApplicationSubmitted) error
	PublishApplicationStatusChanged(ctx Context, ev ApplicationStatusChanged) error
}

// ApplicationSubmitted is emitted after a submit transaction commits.
type ApplicationSubmitted struct {
	Application Application
	OccurredAt  time.Time
}

// ApplicationStatusChanged is emitted after a transition or cancellation
// commits.
type ApplicationStatusChanged struct {
	Application Application
	From        ApplicationStatus
	To          ApplicationStatus
	Actor       Actor
	OccurredAt  time.Time
}

// FeatureFlags (port)

type FeatureFlags interface {
	IsEnabled(flag string) bool
}

// Flag names understood by the core.
const (
	FlagSubmissionsEnabled     = "submissions_enabled"
	FlagRecommendationsEnabled = "recommendations_enabled"
)

// Context is an alias so the domain package does not import std context
// everywhere; adapters and usecases pass context.Context through.
type Context = context.Context
