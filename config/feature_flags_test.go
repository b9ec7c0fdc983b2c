package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlagsDefaults(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureLeaderboardCache, nil))
	assert.True(t, ff.IsEnabled(FeatureQuizAIFeedback, nil))
	assert.False(t, ff.IsEnabled(FeaturePointsBonusStreak, nil), "streak bonus ships disabled")
	assert.False(t, ff.IsEnabled("no.such.feature", nil))
}

func TestFeatureFlagsEnvOverride(t *testing.T) {
	t.Setenv("FEATURE_QUIZ_AI_FEEDBACK", "false")
	t.Setenv("FEATURE_RECOMMENDATIONS_AI", "50")

	ff := LoadFeatureFlags()

	assert.False(t, ff.IsEnabled(FeatureQuizAIFeedback, nil))

	features := ff.GetAllFeatures()
	assert.Equal(t, 50, features[FeatureRecommendationsAI].RolloutPercent)
}

func TestFeatureFlagsRollout(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureRecommendationsAI, 50))

	// Buckets are consistent: the same student always lands on the
	// same side of the rollout.
	ctx := &FeatureContext{StudentID: "stu-1"}
	first := ff.IsEnabled(FeatureRecommendationsAI, ctx)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureRecommendationsAI, ctx))
	}

	require.NoError(t, ff.SetRolloutPercent(FeatureRecommendationsAI, 0))
	assert.False(t, ff.IsEnabled(FeatureRecommendationsAI, ctx))

	require.NoError(t, ff.SetRolloutPercent(FeatureRecommendationsAI, 100))
	assert.True(t, ff.IsEnabled(FeatureRecommendationsAI, ctx))

	assert.Error(t, ff.SetRolloutPercent(FeatureRecommendationsAI, 101))
	assert.ErrorIs(t, ff.SetRolloutPercent("no.such.feature", 10), ErrFeatureNotFound)
}

func TestFeatureFlagsUserOverride(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(FeatureQuizAIFeedback))

	ctx := &FeatureContext{StudentID: "stu-1"}
	assert.False(t, ff.IsEnabled(FeatureQuizAIFeedback, ctx))

	ff.SetUserOverride("stu-1", FeatureQuizAIFeedback, true)
	assert.True(t, ff.IsEnabled(FeatureQuizAIFeedback, ctx))
	assert.False(t, ff.IsEnabled(FeatureQuizAIFeedback, &FeatureContext{StudentID: "stu-2"}))

	ff.ClearUserOverrides("stu-1")
	assert.False(t, ff.IsEnabled(FeatureQuizAIFeedback, ctx))
}

func TestFeatureFlagsAdminBypass(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(FeaturePointsBonusStreak))

	assert.True(t, ff.IsEnabled(FeaturePointsBonusStreak, &FeatureContext{StudentID: "adm", IsAdmin: true}))
}
