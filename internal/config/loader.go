package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces every variable read by Load.
const envPrefix = "JOBSCOUT_"

// conventionalEnv lists credentials that providers document under their own names.
// They apply only when neither the YAML file nor a JOBSCOUT_* variable set the key.
var conventionalEnv = []struct {
	name  string
	key   string
	field func(*Config) *string
}{
	{"ADZUNA_APP_ID", "adzuna_app_id", func(c *Config) *string { return &c.AdzunaAppID }},
	{"ADZUNA_APP_KEY", "adzuna_app_key", func(c *Config) *string { return &c.AdzunaAppKey }},
	{"ADZUNA_COUNTRY", "adzuna_country", func(c *Config) *string { return &c.AdzunaCountry }},
	{"RAPIDAPI_KEY", "rapidapi_key", func(c *Config) *string { return &c.RapidAPIKey }},
	{"JOOBLE_API_KEY", "jooble_api_key", func(c *Config) *string { return &c.JoobleAPIKey }},
	{"USAJOBS_API_KEY", "usajobs_api_key", func(c *Config) *string { return &c.USAJobsAPIKey }},
	{"USAJOBS_EMAIL", "usajobs_email", func(c *Config) *string { return &c.USAJobsEmail }},
	{"THEMUSE_API_KEY", "themuse_api_key", func(c *Config) *string { return &c.TheMuseAPIKey }},
	{"GEOCODE_API_KEY", "geocode_api_key", func(c *Config) *string { return &c.GeocodeAPIKey }},
	{"REDIS_URL", "redis_url", func(c *Config) *string { return &c.RedisURL }},
	{"DATABASE_URL", "database_url", func(c *Config) *string { return &c.DatabaseURL }},
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env in the working directory (or JOBSCOUT_ENV_FILE), never overriding the process env
//  3. YAML file if JOBSCOUT_CONFIG is set
//  4. env (prefix JOBSCOUT_)
//  5. conventional provider variables for credentials still empty
func Load(ctx context.Context) (*Config, error) {
	_ = ctx

	envFile := os.Getenv(envPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, envFile, err)
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// JOBSCOUT_SOURCE_TIMEOUT_MS -> source_timeout_ms
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	for _, ce := range conventionalEnv {
		if v := os.Getenv(ce.name); v != "" && !k.Exists(ce.key) {
			*ce.field(&cfg) = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.FetchWorkers < 1:
		return fmt.Errorf("%w: fetch_workers must be positive", ErrInvalidConfig)
	case c.FetchQueueSize < 1:
		return fmt.Errorf("%w: fetch_queue_size must be positive", ErrInvalidConfig)
	case c.SourceTimeoutMS < 1:
		return fmt.Errorf("%w: source_timeout_ms must be positive", ErrInvalidConfig)
	case c.MaxAttempts < 1:
		return fmt.Errorf("%w: max_attempts must be at least 1", ErrInvalidConfig)
	case c.DefaultLimit < 1 || c.MaxLimit < c.DefaultLimit:
		return fmt.Errorf("%w: need 1 <= default_limit <= max_limit", ErrInvalidConfig)
	}
	switch c.DedupePolicy {
	case DedupeTitleCompany, DedupeTitleCompanyLocation:
	default:
		return fmt.Errorf("%w: unknown dedupe_policy %q", ErrInvalidConfig, c.DedupePolicy)
	}
	for source, w := range c.SourceWeights {
		if w <= 0 {
			return fmt.Errorf("%w: source weight for %s must be positive", ErrInvalidConfig, source)
		}
	}
	return nil
}
