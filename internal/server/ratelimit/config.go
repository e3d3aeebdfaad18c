package ratelimit

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Tier limits every route matching Pattern for one HTTP method. Requests that
// match the same tier share a bucket per client.
type Tier struct {
	Name    string        // Bucket namespace, e.g. "login"
	Method  string        // HTTP method
	Pattern string        // Path pattern; "*" matches one segment, a trailing "/" matches any suffix
	Limit   int           // Requests per window
	Window  time.Duration // Refill window
	Burst   int           // Bucket capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	MaxBuckets    int
	Whitelist     map[string]bool
	Blacklist     map[string]bool
	Tiers         []Tier
}

// Viper keys read by LoadConfig.
const (
	keyEnabled       = "rate_limit_enabled"
	keyDefaultLimit  = "rate_limit_default_limit"
	keyDefaultWindow = "rate_limit_default_window"
	keyMaxBuckets    = "rate_limit_max_buckets"
	keyWhitelist     = "rate_limit_whitelist"
	keyBlacklist     = "rate_limit_blacklist"
)

// LoadConfig reads rate limiting settings from v, binding each key to its
// upper-cased environment variable. A nil v reads the environment only.
func LoadConfig(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}
	v.SetDefault(keyEnabled, true)
	v.SetDefault(keyDefaultLimit, 600)
	v.SetDefault(keyDefaultWindow, time.Minute)
	v.SetDefault(keyMaxBuckets, 10000)
	for _, key := range []string{keyEnabled, keyDefaultLimit, keyDefaultWindow, keyMaxBuckets, keyWhitelist, keyBlacklist} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	if !v.GetBool(keyEnabled) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:       true,
		DefaultLimit:  v.GetInt(keyDefaultLimit),
		DefaultWindow: v.GetDuration(keyDefaultWindow),
		MaxBuckets:    v.GetInt(keyMaxBuckets),
		Whitelist:     parseIPList(v.GetString(keyWhitelist)),
		Blacklist:     parseIPList(v.GetString(keyBlacklist)),
		Tiers:         DefaultTiers(),
	}
}

// DefaultTiers returns the portal's route tiers. Routes without a tier use
// the default limit; GET /health is never limited.
func DefaultTiers() []Tier {
	return []Tier{
		// Credential checks
		{Name: "login", Method: "POST", Pattern: "/auth/login", Limit: 10, Window: time.Minute, Burst: 5},
		{Name: "register", Method: "POST", Pattern: "/users", Limit: 20, Window: time.Hour, Burst: 5},

		// Assessment writes touch the session row under a lock
		{Name: "assessment", Method: "POST", Pattern: "/career-assessment", Limit: 60, Window: time.Minute, Burst: 10},

		// Activity and Q&A writes
		{Name: "activity", Method: "POST", Pattern: "/activity", Limit: 120, Window: time.Minute, Burst: 20},
		{Name: "questions", Method: "POST", Pattern: "/questions", Limit: 30, Window: time.Minute, Burst: 10},
		{Name: "answers", Method: "POST", Pattern: "/questions/*/answers", Limit: 60, Window: time.Minute, Burst: 10},
		{Name: "helpful", Method: "POST", Pattern: "/answers/*/helpful", Limit: 60, Window: time.Minute, Burst: 10},
		{Name: "question-status", Method: "PATCH", Pattern: "/questions/", Limit: 60, Window: time.Minute, Burst: 10},
		{Name: "question-delete", Method: "DELETE", Pattern: "/questions/", Limit: 30, Window: time.Minute, Burst: 5},

		// Catalog previews run fuzzy matching over every role
		{Name: "resolve", Method: "GET", Pattern: "/roles/resolve", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
