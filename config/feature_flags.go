package config

import (
	"os"
	"strconv"
	"strings"
)

// FeatureFlags toggles optional planner surfaces. Every flag defaults to on;
// the core itinerary routes are never gated.
type FeatureFlags struct {
	EnableAISuggestions bool // generated suggestions and itinerary drafts
	EnableCoverLookup   bool // Pexels cover images for new trips
	EnableSwagger       bool // serve /swagger
}

var featureFlagEnv = []struct {
	key string
	set func(*FeatureFlags, bool)
}{
	{"ENABLE_AI_SUGGESTIONS", func(f *FeatureFlags, v bool) { f.EnableAISuggestions = v }},
	{"ENABLE_COVER_LOOKUP", func(f *FeatureFlags, v bool) { f.EnableCoverLookup = v }},
	{"ENABLE_SWAGGER", func(f *FeatureFlags, v bool) { f.EnableSwagger = v }},
}

// GetFeatureFlags reads the ENABLE_* environment variables.
func GetFeatureFlags() FeatureFlags {
	flags := FeatureFlags{}
	for _, e := range featureFlagEnv {
		e.set(&flags, getBoolEnv(e.key, true))
	}
	return flags
}

// getBoolEnv accepts strconv.ParseBool values plus yes/on and any integer.
// Anything unparseable counts as false.
func getBoolEnv(key string, defaultVal bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}

	val = strings.ToLower(strings.TrimSpace(val))
	switch val {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	if n, err := strconv.Atoi(val); err == nil {
		return n != 0
	}
	return false
}
