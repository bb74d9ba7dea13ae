package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/internship-tracker/internal/domain"
)

func TestFlags_IsEnabled(t *testing.T) {
	t.Parallel()
	f := NewFlags(Config{FeatureSubmissions: true, FeatureRecommendations: false, FeatureEmails: true})
	assert.True(t, f.IsEnabled(domain.FlagSubmissionsEnabled))
	assert.False(t, f.IsEnabled(domain.FlagRecommendationsEnabled))
	assert.True(t, f.IsEnabled("email_notifications_enabled"))
}

func TestFlags_UnknownFlagDisabled(t *testing.T) {
	t.Parallel()
	f := NewFlags(Config{FeatureSubmissions: true})
	assert.False(t, f.IsEnabled("mystery_feature"))
}
