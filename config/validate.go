package config

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// FieldError is a validation failure of one configuration field.
type FieldError struct {
	// Field is the dotted path, e.g. "groups.liveness.order[1]".
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "config: validation failed"
	case 1:
		return "config: validation failed: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "config: validation failed with %d errors:", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Is reports whether target is ErrInvalidConfig.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Validate checks cfg after defaults have been applied. All failures are
// reported together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, ok := cfg.Groups[cfg.DefaultGroup]; !ok {
		add("default_group", "group %q is not defined", cfg.DefaultGroup)
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.Groups)) {
		g := cfg.Groups[name]
		prefix := "groups." + name
		if strings.TrimSpace(name) == "" {
			add("groups", "group name must not be empty")
		}
		seen := make(map[health.Status]bool)
		for i, s := range g.Order {
			status, err := health.ParseStatus(s)
			if err != nil {
				add(fmt.Sprintf("%s.order[%d]", prefix, i), "unknown status %q", s)
				continue
			}
			if seen[status] {
				add(fmt.Sprintf("%s.order[%d]", prefix, i), "duplicate status %s", status)
			}
			seen[status] = true
		}
		for _, s := range slices.Sorted(maps.Keys(g.HTTPMapping)) {
			code := g.HTTPMapping[s]
			if _, err := health.ParseStatus(s); err != nil {
				add(prefix+".http_mapping", "unknown status %q", s)
			}
			if code < 100 || code > 599 {
				add(fmt.Sprintf("%s.http_mapping.%s", prefix, s), "HTTP code %d out of range", code)
			}
		}
		for i, child := range g.Include {
			if strings.TrimSpace(child) == "" {
				add(fmt.Sprintf("%s.include[%d]", prefix, i), "component name must not be empty")
			}
		}
	}

	if cfg.Registry.ConcurrencyLimit < 0 {
		add("registry.concurrency_limit", "must not be negative")
	}

	if m := cfg.Contributors.Memory; m != nil {
		if m.Warning < 0 || m.Warning >= 1 {
			add("contributors.memory.warning", "must be in [0, 1)")
		}
		if m.Critical < 0 || m.Critical >= 1 {
			add("contributors.memory.critical", "must be in [0, 1)")
		}
	}
	names := make(map[string]bool)
	if cfg.Contributors.Memory != nil {
		names["memory"] = true
	}
	for i, p := range cfg.Contributors.HTTP {
		field := fmt.Sprintf("contributors.http[%d]", i)
		switch {
		case strings.TrimSpace(p.Name) == "":
			add(field+".name", "is required")
		case names[p.Name]:
			add(field+".name", "duplicate contributor %q", p.Name)
		}
		names[p.Name] = true
		if u, err := url.Parse(p.URL); err != nil || u.Scheme == "" || u.Host == "" {
			add(field+".url", "must be an absolute URL, got %q", p.URL)
		}
		if p.Retries < 0 {
			add(field+".retries", "must not be negative")
		}
		if p.CircuitFailures < 0 {
			add(field+".circuit_failures", "must not be negative")
		}
	}

	if cfg.Cache.Size < 0 {
		add("cache.size", "must not be negative")
	}
	if cfg.Cache.TTL < 0 {
		add("cache.ttl", "must not be negative")
	}
	if cfg.Cache.MaxTTL < 0 {
		add("cache.max_ttl", "must not be negative")
	}

	if _, ok := health.ParseShowDetails(cfg.HTTP.ShowDetails); !ok {
		add("http.show_details", "must be always, never or when_authorized, got %q", cfg.HTTP.ShowDetails)
	}
	if cfg.HTTP.RequestTimeout < 0 {
		add("http.request_timeout", "must not be negative")
	}
	ids := make(map[string]bool)
	for i, k := range cfg.HTTP.APIKeys {
		field := fmt.Sprintf("http.api_keys[%d]", i)
		if k.Key == "" {
			add(field+".key", "is required")
		}
		if k.Principal == "" {
			add(field+".principal", "is required")
		}
		if k.ID != "" && ids[k.ID] {
			add(field+".id", "duplicate id %q", k.ID)
		}
		ids[k.ID] = true
	}
	if cfg.HTTP.JWT != nil && cfg.HTTP.JWT.HMACSecret == "" {
		add("http.jwt.hmac_secret", "is required")
	}
	if cfg.HTTP.ShowDetails == "when_authorized" && len(cfg.HTTP.APIKeys) == 0 && cfg.HTTP.JWT == nil {
		add("http.show_details", "when_authorized requires api_keys or jwt")
	}

	obsCfg := cfg.observeConfig()
	if err := obsCfg.Validate(); err != nil {
		add("observe", "%s", strings.ReplaceAll(err.Error(), "\n", "; "))
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func (c *Config) observeConfig() observe.Config {
	o := c.Observe
	return observe.Config{
		ServiceName: o.ServiceName,
		Version:     o.Version,
		Tracing: observe.TracingConfig{
			Enabled:   o.Tracing.Enabled,
			Exporter:  o.Tracing.Exporter,
			SamplePct: o.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.Metrics.Enabled,
			Exporter: o.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: o.Logging.Enabled,
			Level:   o.Logging.Level,
		},
	}
}
