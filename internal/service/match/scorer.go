// Package match implements the weighted skill compatibility scorer.
//
// Scoring is pure: no I/O, no randomness, identical inputs always produce
// identical results. That keeps cache keys stable and tests reproducible.
package match

import (
	"math"

	"github.com/fairyhunter13/internship-tracker/internal/domain"
	"github.com/fairyhunter13/internship-tracker/pkg/skillx"
)

// Result is the full explanation of one profile/internship comparison.
type Result struct {
	// Score is the final compatibility score in [0,1], rounded to 4 decimals.
	Score          float64  `json:"score"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	CoreMatchCount int      `json:"core_match_count"`
	TotalCore      int      `json:"total_core"`
}

// Percent converts the score to the whole-percent form persisted on an
// application.
func (r Result) Percent() float64 {
	return math.Round(r.Score * 100)
}

const (
	coreWeight     = 2
	optionalWeight = 1
	academicBonus  = 0.10
)

// Scorer computes weighted compatibility scores. The optional alias table
// collapses skill spelling variants before comparison; a nil table is
// valid and leaves skills as written.
type Scorer struct {
	aliases skillx.AliasTable
}

// NewScorer constructs a Scorer with the given alias table.
func NewScorer(aliases skillx.AliasTable) *Scorer {
	return &Scorer{aliases: aliases}
}

// Score compares a profile against an internship's required skills.
//
// The first three required skills form the core band (weight 2), the rest
// the optional band (weight 1). A flat academic bonus applies when the
// profile's academic background shares a keyword with the internship
// title. The result is capped at 1.0.
func (s *Scorer) Score(profile domain.Profile, internship domain.Internship) Result {
	core, optional := skillx.SplitBands(internship.RequiredSkills)
	core = s.aliases.Apply(core)
	optional = s.aliases.Apply(optional)
	skills := s.aliases.Apply(skillx.Normalize(profile.Skills))

	coreMatches := skillx.Intersect(skills, core)
	optionalMatches := skillx.Intersect(skills, optional)

	weighted := len(coreMatches)*coreWeight + len(optionalMatches)*optionalWeight
	maxWeighted := len(core)*coreWeight + len(optional)*optionalWeight
	base := 0.0
	if maxWeighted > 0 {
		base = float64(weighted) / float64(maxWeighted)
	}

	bonus := 0.0
	profileKeywords := skillx.Keywords(profile.AcademicBackground)
	titleKeywords := skillx.Keywords(internship.Title)
	if len(skillx.Intersect(profileKeywords, titleKeywords)) > 0 {
		bonus = academicBonus
	}

	score := math.Min(1.0, base+bonus)
	score = math.Round(score*10000) / 10000

	matching := skillx.Normalize(append(append([]string{}, coreMatches...), optionalMatches...))
	allRequired := skillx.Normalize(append(append([]string{}, core...), optional...))

	return Result{
		Score:          score,
		MatchingSkills: matching,
		MissingSkills:  skillx.Subtract(allRequired, matching),
		CoreMatchCount: len(coreMatches),
		TotalCore:      len(core),
	}
}
