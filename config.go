package webcite

import "time"

// ResolvedMode selects how a record adopted from DOI resolution is turned
// into output text.
type ResolvedMode string

const (
	// ResolvedReformat runs resolved fields through the template and the
	// cleanup chain like any other record.
	ResolvedReformat ResolvedMode = "reformat"

	// ResolvedVerbatim emits the resolver's text unchanged except for the
	// citation key.
	ResolvedVerbatim ResolvedMode = "verbatim"
)

// Config holds application configuration.
type Config struct {
	// DBPath is the SQLite corpus index location.
	DBPath string `toml:"db_path"`

	// Corpus lists glob patterns of bibliography files checked for
	// duplicates.
	Corpus []string `toml:"corpus"`

	// RulesPath overrides the built-in regex rules when set.
	RulesPath string `toml:"rules_path"`

	ResolvedMode ResolvedMode `toml:"resolved_mode"`

	Fetch    FetchConfig    `toml:"fetch"`
	Resolver ResolverConfig `toml:"resolver"`

	// Encodings maps a site domain to the character encoding its pages are
	// served in, for sites that do not declare it reliably.
	Encodings map[string]string `toml:"encodings"`
}

// FetchConfig configures page retrieval.
type FetchConfig struct {
	UserAgent         string  `toml:"user_agent"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	Retries           int     `toml:"retries"`
	Browser           bool    `toml:"browser"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// ResolverConfig configures DOI resolution.
type ResolverConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Default configuration values.
const (
	DefaultUserAgent         = "webcite/0.1 (+https://github.com/fwojciec/webcite)"
	DefaultResolverBaseURL   = "https://doi.org"
	DefaultTimeoutSeconds    = 10
	DefaultRetries           = 1
	DefaultRequestsPerSecond = 1.0
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ResolvedMode: ResolvedReformat,
		Fetch: FetchConfig{
			UserAgent:         DefaultUserAgent,
			TimeoutSeconds:    DefaultTimeoutSeconds,
			Retries:           DefaultRetries,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Resolver: ResolverConfig{
			BaseURL:        DefaultResolverBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Encodings: map[string]string{},
	}
}

// Validate returns an error if the configuration contains invalid values.
func (c *Config) Validate() error {
	switch c.ResolvedMode {
	case ResolvedReformat, ResolvedVerbatim:
	default:
		return Errorf(EINVALID, "unknown resolved_mode %q", c.ResolvedMode)
	}
	if c.Fetch.TimeoutSeconds < 0 || c.Resolver.TimeoutSeconds < 0 {
		return Errorf(EINVALID, "timeouts must not be negative")
	}
	if c.Fetch.Retries < 0 {
		return Errorf(EINVALID, "fetch retries must not be negative")
	}
	if c.Fetch.RequestsPerSecond <= 0 {
		return Errorf(EINVALID, "requests_per_second must be positive")
	}
	return nil
}

// FetchTimeout returns the page fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// ResolverTimeout returns the DOI resolution timeout.
func (c *Config) ResolverTimeout() time.Duration {
	return time.Duration(c.Resolver.TimeoutSeconds) * time.Second
}

// RetryDelays returns the backoff delays for page fetch retries.
func (c *Config) RetryDelays() []time.Duration {
	delays := make([]time.Duration, 0, c.Fetch.Retries)
	for i := 0; i < c.Fetch.Retries; i++ {
		delays = append(delays, time.Duration(1<<i)*time.Second)
	}
	return delays
}
