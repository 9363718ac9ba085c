package pkgcat

import "time"

// Default run configuration values.
const (
	DefaultConcurrency  = 10
	DefaultHostRPS      = 1.0
	DefaultRetries      = 3
	DefaultBaseDelay    = 1 * time.Second
	DefaultMaxDelay     = 8 * time.Second
	DefaultProbeTimeout = 10 * time.Second
	DefaultDeadline     = 5 * time.Minute
	DefaultManifestPath = "blob/master/fpm.toml"
	DefaultManifestTag  = "fpm"
)

// Config holds the parameters of one ingestion run.
type Config struct {
	// Concurrency is the maximum number of probes in flight.
	Concurrency int

	// HostRPS is the per-host probe rate.
	HostRPS float64

	// Retries is how many times a transient failure is retried.
	Retries int

	// BaseDelay is the first backoff delay; it doubles up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// ProbeTimeout bounds a single network probe.
	ProbeTimeout time.Duration

	// Deadline bounds the whole validation phase. Zero disables it.
	Deadline time.Duration

	// ManifestPath, when set, is probed relative to each reachable primary
	// URL; entries where it exists receive ManifestTag.
	ManifestPath string
	ManifestTag  string

	// ProbeSecondary enables a single, un-retried check of secondary URLs.
	ProbeSecondary bool

	Taxonomy Taxonomy
}

// DefaultConfig returns a Config populated with default values and an empty taxonomy.
func DefaultConfig() Config {
	return Config{
		Concurrency:  DefaultConcurrency,
		HostRPS:      DefaultHostRPS,
		Retries:      DefaultRetries,
		BaseDelay:    DefaultBaseDelay,
		MaxDelay:     DefaultMaxDelay,
		ProbeTimeout: DefaultProbeTimeout,
		Deadline:     DefaultDeadline,
	}
}

// Validate returns an EINVALID error describing the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Concurrency <= 0:
		return Errorf(EINVALID, "concurrency must be positive, got %d", c.Concurrency)
	case c.HostRPS <= 0:
		return Errorf(EINVALID, "host rate must be positive, got %v", c.HostRPS)
	case c.Retries < 0:
		return Errorf(EINVALID, "retries must not be negative, got %d", c.Retries)
	case c.BaseDelay <= 0:
		return Errorf(EINVALID, "base delay must be positive, got %s", c.BaseDelay)
	case c.MaxDelay < c.BaseDelay:
		return Errorf(EINVALID, "max delay %s is below base delay %s", c.MaxDelay, c.BaseDelay)
	case c.ProbeTimeout < 0:
		return Errorf(EINVALID, "probe timeout must not be negative, got %s", c.ProbeTimeout)
	case c.Deadline < 0:
		return Errorf(EINVALID, "deadline must not be negative, got %s", c.Deadline)
	}
	return c.Taxonomy.Validate()
}

// ManifestTagOrDefault returns the configured manifest tag.
func (c *Config) ManifestTagOrDefault() string {
	if c.ManifestTag != "" {
		return c.ManifestTag
	}
	return DefaultManifestTag
}

// RetryDelays expands the backoff policy into one delay per retry:
// BaseDelay, doubling each time, capped at MaxDelay.
func (c *Config) RetryDelays() []time.Duration {
	delays := make([]time.Duration, 0, c.Retries)
	d := c.BaseDelay
	for range c.Retries {
		delays = append(delays, min(d, c.MaxDelay))
		d *= 2
	}
	return delays
}
