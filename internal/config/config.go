// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Flat koanf keys so that every field maps to one JOBSCOUT_* variable.
// - Provider credentials may also come from their conventional variable names.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"runtime"
	"strings"
	"time"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":9080"

// Dedupe policies understood by the pipeline.
const (
	DedupeTitleCompany         = "title_company"
	DedupeTitleCompanyLocation = "title_company_location"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// FetchWorkers bounds concurrent upstream calls across all requests.
	FetchWorkers int `koanf:"fetch_workers"`
	// FetchQueueSize bounds fetch tasks waiting for a worker.
	FetchQueueSize int `koanf:"fetch_queue_size"`

	// SourceTimeoutMS is the per-call timeout applied to each provider.
	SourceTimeoutMS int `koanf:"source_timeout_ms"`
	// RetryBaseDelayMS and MaxAttempts drive 429/503 backoff.
	RetryBaseDelayMS int `koanf:"retry_base_delay_ms"`
	MaxAttempts      int `koanf:"max_attempts"`
	// SourceResultsPerCall is the page size asked of each provider.
	SourceResultsPerCall int `koanf:"source_results_per_call"`

	// DefaultLimit and MaxLimit shape pagination on /search-jobs.
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`

	// DedupePolicy is title_company or title_company_location.
	DedupePolicy string `koanf:"dedupe_policy"`

	// SourceWeights maps provider name to its ranking boost.
	SourceWeights map[string]float64 `koanf:"source_weights"`
	// DisabledSources is a comma separated list of providers to skip entirely.
	DisabledSources string `koanf:"disabled_sources"`

	// Provider credentials.
	AdzunaAppID   string `koanf:"adzuna_app_id"`
	AdzunaAppKey  string `koanf:"adzuna_app_key"`
	AdzunaCountry string `koanf:"adzuna_country"`
	RapidAPIKey   string `koanf:"rapidapi_key"`
	JoobleAPIKey  string `koanf:"jooble_api_key"`
	USAJobsAPIKey string `koanf:"usajobs_api_key"`
	USAJobsEmail  string `koanf:"usajobs_email"`
	TheMuseAPIKey string `koanf:"themuse_api_key"`

	// Geocoding.
	GeocodeAPIKey          string `koanf:"geocode_api_key"`
	GeocodeBaseURL         string `koanf:"geocode_base_url"`
	GeocodeCacheTTLMinutes int    `koanf:"geocode_cache_ttl_minutes"`
	GeocodeCacheSize       int    `koanf:"geocode_cache_size"`

	// RedisURL enables the shared geocode cache tier when set.
	RedisURL string `koanf:"redis_url"`
	// DatabaseURL enables the Postgres saved-search store when set.
	DatabaseURL string `koanf:"database_url"`
	// SavedSearchSchedule is a cron spec for saved-search refreshes; empty disables.
	SavedSearchSchedule string `koanf:"saved_search_schedule"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 DefaultAddr,
		FetchWorkers:         runtime.NumCPU() * 4,
		FetchQueueSize:       1024,
		SourceTimeoutMS:      8000,
		RetryBaseDelayMS:     250,
		MaxAttempts:          3,
		SourceResultsPerCall: 20,
		DefaultLimit:         12,
		MaxLimit:             50,
		DedupePolicy:         DedupeTitleCompany,
		SourceWeights: map[string]float64{
			"usajobs":   1.0,
			"themuse":   0.95,
			"remotive":  0.95,
			"arbeitnow": 0.9,
			"adzuna":    0.85,
			"jsearch":   0.8,
			"jooble":    0.75,
		},
		AdzunaCountry:          "gb",
		GeocodeBaseURL:         "https://api.opencagedata.com/geocode/v1/json",
		GeocodeCacheTTLMinutes: 0,
		GeocodeCacheSize:       0,
		SavedSearchSchedule:    "@every 6h",
	}
}

// SourceTimeout returns the per-call provider timeout.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutMS) * time.Millisecond
}

// RetryBaseDelay returns the backoff base delay.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMS) * time.Millisecond
}

// GeocodeCacheTTL returns the geocode cache TTL; zero means entries never expire.
func (c *Config) GeocodeCacheTTL() time.Duration {
	return time.Duration(c.GeocodeCacheTTLMinutes) * time.Minute
}

// Disabled reports whether a provider was switched off.
func (c *Config) Disabled(source string) bool {
	for _, s := range strings.Split(c.DisabledSources, ",") {
		if strings.EqualFold(strings.TrimSpace(s), source) {
			return true
		}
	}
	return false
}
