package usecase_test

import (
	"encoding/json"
	"time"

	"github.com/fairyhunter13/internship-tracker/internal/domain"
)

// In-memory test doubles for the domain ports.

type stubFlags struct{ disabled map[string]bool }

func (f stubFlags) IsEnabled(flag string) bool { return !f.disabled[flag] }

type stubProfiles struct {
	byUser map[string]domain.Profile
	err    error
}

func (r *stubProfiles) GetByUserID(_ domain.Context, userID string) (domain.Profile, error) {
	if r.err != nil {
		return domain.Profile{}, r.err
	}
	p, ok := r.byUser[userID]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	return p, nil
}

type stubInternships struct {
	byID           map[string]domain.Internship
	active         []domain.Internship
	recent         []domain.Internship
	activeExcludes []string
	recentExcludes []string
	recentLimit    int
}

func (r *stubInternships) Get(_ domain.Context, id string) (domain.Internship, error) {
	in, ok := r.byID[id]
	if !ok {
		return domain.Internship{}, domain.ErrNotFound
	}
	return in, nil
}

func (r *stubInternships) ListActiveExcluding(_ domain.Context, excludeIDs []string) ([]domain.Internship, error) {
	r.activeExcludes = excludeIDs
	out := make([]domain.Internship, 0, len(r.active))
	for _, in := range r.active {
		if !contains(excludeIDs, in.ID) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (r *stubInternships) ListRecentActiveExcluding(_ domain.Context, excludeIDs []string, limit int) ([]domain.Internship, error) {
	r.recentExcludes = excludeIDs
	r.recentLimit = limit
	out := make([]domain.Internship, 0, limit)
	for _, in := range r.recent {
		if len(out) == limit {
			break
		}
		if !contains(excludeIDs, in.ID) {
			out = append(out, in)
		}
	}
	return out, nil
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

type stubApps struct {
	byID          map[string]domain.Application
	existing      map[string]domain.Application // userID|internshipID
	appliedIDs    []string
	created       []domain.Application
	createdAudit  []domain.AuditEntry
	transitions   []domain.AuditEntry
	deleted       []string
	deletedAudit  []domain.AuditEntry
	createErr     error
	transitionErr error
}

func (r *stubApps) Get(_ domain.Context, id string) (domain.Application, error) {
	a, ok := r.byID[id]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	return a, nil
}

func (r *stubApps) FindByUserAndInternship(_ domain.Context, userID, internshipID string) (domain.Application, error) {
	a, ok := r.existing[userID+"|"+internshipID]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	return a, nil
}

func (r *stubApps) ListInternshipIDsByUser(_ domain.Context, _ string) ([]string, error) {
	return r.appliedIDs, nil
}

func (r *stubApps) CreateWithAudit(_ domain.Context, app domain.Application, entry domain.AuditEntry) (domain.Application, error) {
	if r.createErr != nil {
		return domain.Application{}, r.createErr
	}
	r.created = append(r.created, app)
	r.createdAudit = append(r.createdAudit, entry)
	return app, nil
}

func (r *stubApps) TransitionWithAudit(_ domain.Context, id string, _, to domain.ApplicationStatus, entry domain.AuditEntry) (domain.Application, error) {
	if r.transitionErr != nil {
		return domain.Application{}, r.transitionErr
	}
	r.transitions = append(r.transitions, entry)
	a := r.byID[id]
	a.Status = to
	return a, nil
}

func (r *stubApps) DeleteWithAudit(_ domain.Context, id string, entry domain.AuditEntry) error {
	r.deleted = append(r.deleted, id)
	r.deletedAudit = append(r.deletedAudit, entry)
	return nil
}

type stubAudit struct {
	entries   []domain.AuditEntry
	durations []domain.TransitionDuration
	calls     int
}

func (r *stubAudit) ListByApplication(_ domain.Context, _ string) ([]domain.AuditEntry, error) {
	return r.entries, nil
}

func (r *stubAudit) TransitionDurations(_ domain.Context) ([]domain.TransitionDuration, error) {
	r.calls++
	return r.durations, nil
}

type stubEvents struct {
	submitted []domain.ApplicationSubmitted
	changed   []domain.ApplicationStatusChanged
	err       error
}

func (e *stubEvents) PublishApplicationSubmitted(_ domain.Context, ev domain.ApplicationSubmitted) error {
	e.submitted = append(e.submitted, ev)
	return e.err
}

func (e *stubEvents) PublishApplicationStatusChanged(_ domain.Context, ev domain.ApplicationStatusChanged) error {
	e.changed = append(e.changed, ev)
	return e.err
}

// memCache stores marshaled values keyed by namespace:key and records
// invalidations, mirroring the real store's JSON round-trip.
type memCache struct {
	entries       map[string][]byte
	ttls          map[string]time.Duration
	invalidated   []string
	invalidatedNS []string
	getErr        error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ domain.Context, ns, key string, dest any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.entries[ns+":"+key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *memCache) Set(_ domain.Context, ns, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[ns+":"+key] = b
	c.ttls[ns+":"+key] = ttl
	return nil
}

func (c *memCache) Invalidate(_ domain.Context, ns, key string) error {
	delete(c.entries, ns+":"+key)
	c.invalidated = append(c.invalidated, ns+":"+key)
	return nil
}

func (c *memCache) InvalidateAll(_ domain.Context, ns string) error {
	for k := range c.entries {
		if len(k) > len(ns) && k[:len(ns)+1] == ns+":" {
			delete(c.entries, k)
		}
	}
	c.invalidatedNS = append(c.invalidatedNS, ns)
	return nil
}

type stubStats struct {
	byStatus     map[domain.ApplicationStatus]int64
	userByStatus map[domain.ApplicationStatus]int64
	avgScore     float64
	distribution map[int]int64
	counts       []domain.InternshipCount
	performance  []domain.InternshipPerformance
	countCalls   int
}

func (s *stubStats) CountByStatus(_ domain.Context) (map[domain.ApplicationStatus]int64, error) {
	s.countCalls++
	return s.byStatus, nil
}

func (s *stubStats) CountByStatusForUser(_ domain.Context, _ string) (map[domain.ApplicationStatus]int64, error) {
	return s.userByStatus, nil
}

func (s *stubStats) AvgMatchScoreForUser(_ domain.Context, _ string) (float64, error) {
	return s.avgScore, nil
}

func (s *stubStats) ScoreDistribution(_ domain.Context) (map[int]int64, error) {
	return s.distribution, nil
}

func (s *stubStats) ApplicationsPerInternship(_ domain.Context, limit int) ([]domain.InternshipCount, error) {
	if len(s.counts) > limit {
		return s.counts[:limit], nil
	}
	return s.counts, nil
}

func (s *stubStats) TopPerformingInternships(_ domain.Context, limit int) ([]domain.InternshipPerformance, error) {
	if len(s.performance) > limit {
		return s.performance[:limit], nil
	}
	return s.performance, nil
}
