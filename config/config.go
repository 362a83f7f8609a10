package config

import "time"

// Config is the file representation of a health endpoint: its groups, the
// HTTP surface in front of it and the telemetry behind it.
type Config struct {
	// DefaultGroup is served at /health. Default: "primary".
	DefaultGroup string `yaml:"default_group"`

	// Groups maps group names to their policy. An empty map yields the
	// default group with the simple aggregator and mapper.
	Groups map[string]GroupConfig `yaml:"groups"`

	Registry     RegistryConfig     `yaml:"registry"`
	Contributors ContributorsConfig `yaml:"contributors"`
	Cache    CacheConfig    `yaml:"cache"`
	HTTP     HTTPConfig     `yaml:"http"`
	Observe  ObserveConfig  `yaml:"observe"`
}

// GroupConfig configures one health group.
type GroupConfig struct {
	// Include restricts the group to these direct children. Empty means all.
	Include []string `yaml:"include"`

	// Order is a status precedence list, most significant first. Empty
	// selects the simple worst-of aggregator.
	Order []string `yaml:"order"`

	// HTTPMapping overrides status to HTTP code mappings, e.g.
	// {OUT_OF_SERVICE: 200}.
	HTTPMapping map[string]int `yaml:"http_mapping"`
}

// RegistryConfig configures registry evaluation.
type RegistryConfig struct {
	// ConcurrencyLimit caps concurrent contributor evaluations. Zero means
	// unlimited.
	ConcurrencyLimit int `yaml:"concurrency_limit"`
}

// ContributorsConfig declares the built-in contributors to register.
type ContributorsConfig struct {
	// Memory registers a "memory" contributor when set.
	Memory *MemoryProbeConfig `yaml:"memory"`

	HTTP []HTTPProbeConfig `yaml:"http"`
}

// MemoryProbeConfig configures the heap usage contributor. Thresholds are
// ratios of MaxAlloc.
type MemoryProbeConfig struct {
	Warning  float64 `yaml:"warning"`
	Critical float64 `yaml:"critical"`
	MaxAlloc uint64  `yaml:"max_alloc"`
}

// HTTPProbeConfig declares one downstream HTTP dependency.
type HTTPProbeConfig struct {
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`
	Method  string        `yaml:"method"`
	Timeout time.Duration `yaml:"timeout"`
	Tags    []string      `yaml:"tags"`

	// Header values are resolved through the secret resolver.
	Header map[string]string `yaml:"header"`

	// Retries is the number of extra attempts after a failed probe.
	Retries int `yaml:"retries"`

	// CircuitFailures opens a circuit breaker after that many consecutive
	// failures. Zero disables the breaker.
	CircuitFailures int           `yaml:"circuit_failures"`
	CircuitReset    time.Duration `yaml:"circuit_reset"`
}

// CacheConfig configures snapshot caching of contributors. Caching is off
// while TTL is zero.
type CacheConfig struct {
	// Size bounds the number of cached snapshots. Default: 1024.
	Size int `yaml:"size"`

	TTL    time.Duration `yaml:"ttl"`
	MaxTTL time.Duration `yaml:"max_ttl"`

	// FailureTTL applies to snapshots that are not UP. Negative disables
	// caching of failures.
	FailureTTL time.Duration `yaml:"failure_ttl"`
}

// HTTPConfig configures the HTTP handlers.
type HTTPConfig struct {
	// Addr is the listen address of healthd serve. Default: ":8080".
	Addr string `yaml:"addr"`

	// ShowDetails is always, never or when_authorized. Default: always.
	ShowDetails string `yaml:"show_details"`

	// RequestTimeout bounds each evaluation. Default: 10s.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// RequiredRoles restricts details to identities holding one of these
	// roles. Empty admits any authenticated identity.
	RequiredRoles []string `yaml:"required_roles"`

	APIKeys []APIKeyConfig `yaml:"api_keys"`
	JWT     *JWTConfig     `yaml:"jwt"`
}

// APIKeyConfig declares one accepted API key. Key is resolved through the
// secret resolver, so it may be "${VAR}" or a secretref.
type APIKeyConfig struct {
	ID        string   `yaml:"id"`
	Key       string   `yaml:"key"`
	Principal string   `yaml:"principal"`
	Roles     []string `yaml:"roles"`
}

// JWTConfig enables bearer token authentication with an HMAC secret.
type JWTConfig struct {
	HMACSecret string `yaml:"hmac_secret"`
	Issuer     string `yaml:"issuer"`
	Audience   string `yaml:"audience"`
	RolesClaim string `yaml:"roles_claim"`
}

// ObserveConfig configures telemetry. Field names follow observe.Config.
type ObserveConfig struct {
	ServiceName string `yaml:"service_name"`
	Version     string `yaml:"version"`
	Tracing     struct {
		Enabled   bool    `yaml:"enabled"`
		Exporter  string  `yaml:"exporter"`
		SamplePct float64 `yaml:"sample_pct"`
	} `yaml:"tracing"`
	Metrics struct {
		Enabled  bool   `yaml:"enabled"`
		Exporter string `yaml:"exporter"`
	} `yaml:"metrics"`
	Logging struct {
		Enabled bool   `yaml:"enabled"`
		Level   string `yaml:"level"`
	} `yaml:"logging"`
}

// Default configuration values.
const (
	DefaultAddr           = ":8080"
	DefaultShowDetails    = "always"
	DefaultRequestTimeout = 10 * time.Second
	DefaultServiceName    = "healthops"
)

// ApplyDefaults fills every unset field with its default.
func ApplyDefaults(cfg *Config) {
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = "primary"
	}
	if len(cfg.Groups) == 0 {
		cfg.Groups = map[string]GroupConfig{cfg.DefaultGroup: {}}
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = DefaultAddr
	}
	if cfg.HTTP.ShowDetails == "" {
		cfg.HTTP.ShowDetails = DefaultShowDetails
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Observe.ServiceName == "" {
		cfg.Observe.ServiceName = DefaultServiceName
	}
	if cfg.Observe.Tracing.Enabled && cfg.Observe.Tracing.SamplePct == 0 {
		cfg.Observe.Tracing.SamplePct = 1.0
	}
	if cfg.Observe.Logging.Enabled && cfg.Observe.Logging.Level == "" {
		cfg.Observe.Logging.Level = "info"
	}
}
