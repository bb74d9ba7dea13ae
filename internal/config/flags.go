package config

import "github.com/fairyhunter13/internship-tracker/internal/domain"

// Flags adapts Config into the domain.FeatureFlags port. Unknown flags
// read as disabled.
type Flags struct {
	cfg Config
}

// NewFlags wraps a Config as a feature-flag reader.
func NewFlags(cfg Config) Flags { return Flags{cfg: cfg} }

// IsEnabled reports whether the named feature is on.
func (f Flags) IsEnabled(flag string) bool {
	switch flag {
	case domain.FlagSubmissionsEnabled:
		return f.cfg.FeatureSubmissions
	case domain.FlagRecommendationsEnabled:
		return f.cfg.FeatureRecommendations
	case "email_notifications_enabled":
		return f.cfg.FeatureEmails
	default:
		return false
	}
}
