package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles with gradual rollout support.
// Flags gate optional behavior of the learning core so new reward or
// recommendation logic can be rolled out to a fraction of students first.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[string]map[string]bool // studentID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Students are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	StudentID string
	IsAdmin   bool
}

// Predefined feature flag names.
const (
	// === Leaderboard ===
	FeatureLeaderboardCache = "leaderboard.cache" // serve leaderboard from Redis

	// === Recommendations ===
	FeatureRecommendationsAI = "recommendations.ai" // AI explanations for picks

	// === Quiz grading ===
	FeatureQuizAIFeedback = "quiz.ai_feedback" // AI feedback on short answers

	// === Tutor ===
	FeatureTutorChat = "tutor.chat" // AI tutor chat replies

	// === Notifications ===
	FeatureNotifyOnEnroll   = "notify.on_enroll"   // enrollment confirmations
	FeatureNotifyOnComplete = "notify.on_complete" // content completion messages
	FeatureNotifyOnPayment  = "notify.on_payment"  // payment receipts

	// === Rewards ===
	FeaturePointsBonusStreak = "points.bonus_streak" // bonus points for streaks (phase 2)
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureLeaderboardCache] = &Feature{
		Name:           FeatureLeaderboardCache,
		Description:    "Serve leaderboard reads from the Redis projection",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRecommendationsAI] = &Feature{
		Name:           FeatureRecommendationsAI,
		Description:    "Generate recommendation explanations with the AI client",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureQuizAIFeedback] = &Feature{
		Name:           FeatureQuizAIFeedback,
		Description:    "Grade short-answer quiz questions with the AI client",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureTutorChat] = &Feature{
		Name:           FeatureTutorChat,
		Description:    "Answer tutor chat questions with the AI client",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyOnEnroll] = &Feature{
		Name:           FeatureNotifyOnEnroll,
		Description:    "Create a notification when a student enrolls",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyOnComplete] = &Feature{
		Name:           FeatureNotifyOnComplete,
		Description:    "Create a notification on content completion",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyOnPayment] = &Feature{
		Name:           FeatureNotifyOnPayment,
		Description:    "Create a notification on successful payment",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeaturePointsBonusStreak] = &Feature{
		Name:           FeaturePointsBonusStreak,
		Description:    "Bonus points for daily completion streaks",
		Enabled:        false, // Phase 2
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_QUIZ_AI_FEEDBACK=false
// Example: FEATURE_RECOMMENDATIONS_AI=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "quiz.ai_feedback" -> "FEATURE_QUIZ_AI_FEEDBACK"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.StudentID != "" {
		if userOverrides, ok := ff.userOverrides[ctx.StudentID]; ok {
			if enabled, ok := userOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.StudentID != "" {
		return ff.isInRollout(ctx.StudentID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a student is in the rollout percentage.
// Uses consistent hashing so students stay in their bucket.
func (ff *FeatureFlags) isInRollout(studentID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(studentID))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// SetUserOverride sets a feature override for a specific student.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetUserOverride(studentID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[studentID]; !ok {
		ff.userOverrides[studentID] = make(map[string]bool)
	}
	ff.userOverrides[studentID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a student.
func (ff *FeatureFlags) ClearUserOverrides(studentID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, studentID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
