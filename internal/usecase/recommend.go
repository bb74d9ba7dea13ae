package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/internship-tracker/internal/adapter/observability"
	"github.com/fairyhunter13/internship-tracker/internal/domain"
	"github.com/fairyhunter13/internship-tracker/internal/service/match"
)

// DefaultRecommendationTTL is how long a computed recommendation list
// stays cached before it expires on its own.
const DefaultRecommendationTTL = 5 * time.Minute

// Recommendation pairs an internship with its match explanation.
type Recommendation struct {
	Internship domain.Internship `json:"internship"`
	Match      match.Result      `json:"match"`
	// Fallback marks entries appended only to fill the requested length;
	// their score may be zero.
	Fallback bool `json:"fallback"`
}

// RecommendService produces ranked internship recommendations for a user.
type RecommendService struct {
	Profiles    domain.ProfileRepository
	Internships domain.InternshipRepository
	Apps        domain.ApplicationRepository
	Scorer      *match.Scorer
	Cache       domain.Cache
	Flags       domain.FeatureFlags
	TTL         time.Duration
}

// NewRecommendService constructs a RecommendService. A zero ttl falls back
// to DefaultRecommendationTTL.
func NewRecommendService(
	profiles domain.ProfileRepository,
	internships domain.InternshipRepository,
	apps domain.ApplicationRepository,
	scorer *match.Scorer,
	cache domain.Cache,
	flags domain.FeatureFlags,
	ttl time.Duration,
) RecommendService {
	if ttl <= 0 {
		ttl = DefaultRecommendationTTL
	}
	return RecommendService{
		Profiles:    profiles,
		Internships: internships,
		Apps:        apps,
		Scorer:      scorer,
		Cache:       cache,
		Flags:       flags,
		TTL:         ttl,
	}
}

// Recommend returns up to limit active internships the user has not
// applied to, ranked by match score descending with ties broken by
// internship ID ascending. When fewer than limit internships score above
// zero, the list is filled with the most recently created remaining ones.
// A user with no profile or no skills gets an empty list, never an error.
//
// Results are cached per user; a cache hit is returned as computed,
// trimmed to limit without recomputing or re-sorting.
func (s RecommendService) Recommend(ctx domain.Context, userID string, limit int) ([]Recommendation, error) {
	tracer := otel.Tracer("usecase.recommend")
	ctx, span := tracer.Start(ctx, "recommend.Recommend")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidArgument)
	}
	start := time.Now()
	defer func() {
		observability.RecommendationDuration.Observe(time.Since(start).Seconds())
	}()

	var cached []Recommendation
	hit, err := s.Cache.Get(ctx, domain.CacheNSRecommendations, userID, &cached)
	if err != nil {
		slog.Warn("recommendation cache read failed", slog.String("user_id", userID), slog.Any("error", err))
	}
	if hit {
		observability.CacheHitsTotal.WithLabelValues(domain.CacheNSRecommendations).Inc()
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}
	observability.CacheMissesTotal.WithLabelValues(domain.CacheNSRecommendations).Inc()

	recs, err := s.compute(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, domain.CacheNSRecommendations, userID, recs, s.TTL); err != nil {
		slog.Warn("recommendation cache write failed", slog.String("user_id", userID), slog.Any("error", err))
	}
	return recs, nil
}

func (s RecommendService) compute(ctx domain.Context, userID string, limit int) ([]Recommendation, error) {
	// Empty list, not nil: the empty result is cached too, so repeated
	// calls from an incomplete profile do not hammer the store.
	empty := []Recommendation{}

	if !s.Flags.IsEnabled(domain.FlagRecommendationsEnabled) {
		return empty, nil
	}

	profile, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return empty, nil
		}
		return nil, err
	}
	if !profile.HasSkills() {
		return empty, nil
	}

	applied, err := s.Apps.ListInternshipIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.Internships.ListActiveExcluding(ctx, applied)
	if err != nil {
		return nil, err
	}

	scored := make([]Recommendation, 0, len(candidates))
	for _, in := range candidates {
		res := s.Scorer.Score(profile, in)
		if res.Score > 0 {
			scored = append(scored, Recommendation{Internship: in, Match: res})
		}
	}
	// Candidates arrive ordered by internship ID ascending; the stable sort
	// keeps that order for equal scores, which is the documented tie-break.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Match.Score > scored[j].Match.Score
	})

	if len(scored) >= limit {
		return scored[:limit], nil
	}

	exclude := make([]string, 0, len(applied)+len(scored))
	exclude = append(exclude, applied...)
	for _, r := range scored {
		exclude = append(exclude, r.Internship.ID)
	}
	fillers, err := s.Internships.ListRecentActiveExcluding(ctx, exclude, limit-len(scored))
	if err != nil {
		return nil, err
	}
	for _, in := range fillers {
		scored = append(scored, Recommendation{Internship: in, Match: s.Scorer.Score(profile, in), Fallback: true})
	}
	return scored, nil
}
