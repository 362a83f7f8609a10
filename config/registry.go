package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
)

// NewRegistry builds a registry holding the configured contributors.
//
// Each HTTP probe is wrapped, innermost first, in its retry and circuit
// policies, then the snapshot cache, then mw when it is non-nil.
func (c *Config) NewRegistry(mw *observe.Middleware) (*health.Registry, error) {
	cacheMW, err := c.CacheMiddleware()
	if err != nil {
		return nil, err
	}

	reg := health.NewRegistry(c.RegistryOptions()...)
	register := func(meta observe.ComponentMeta, contributor health.Contributor) error {
		if cacheMW != nil {
			contributor = cacheMW.Wrap(meta, contributor)
		}
		if mw != nil {
			contributor = health.Instrument(meta, contributor, mw)
		}
		return reg.Register(meta.Name, contributor)
	}

	if m := c.Contributors.Memory; m != nil {
		memory := health.NewMemoryContributor(health.MemoryConfig{
			WarningThreshold:  m.Warning,
			CriticalThreshold: m.Critical,
			MaxAlloc:          m.MaxAlloc,
		})
		// Memory readings are local and cheap; they are never cached.
		if err := register(observe.ComponentMeta{Name: "memory", Tags: []string{"nocache"}}, memory); err != nil {
			return nil, fmt.Errorf("config: contributors.memory: %w", err)
		}
	}

	for i, p := range c.Contributors.HTTP {
		meta := observe.ComponentMeta{Name: p.Name, Tags: p.Tags}
		if err := register(meta, p.contributor()); err != nil {
			return nil, fmt.Errorf("config: contributors.http[%d]: %w", i, err)
		}
	}
	return reg, nil
}

func (p HTTPProbeConfig) contributor() health.Contributor {
	header := make(http.Header, len(p.Header))
	for k, v := range p.Header {
		header.Set(k, v)
	}
	var contributor health.Contributor = health.NewHTTPContributor(health.HTTPConfig{
		URL:     p.URL,
		Method:  p.Method,
		Timeout: p.Timeout,
		Header:  header,
	})

	var opts []resilience.ExecutorOption
	if p.Retries > 0 {
		opts = append(opts, resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  p.Retries + 1,
			InitialDelay: 50 * time.Millisecond,
			Jitter:       true,
			RetryOnDown:  true,
		})))
	}
	if p.CircuitFailures > 0 {
		opts = append(opts, resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			MaxFailures:  p.CircuitFailures,
			ResetTimeout: p.CircuitReset,
		})))
	}
	if len(opts) > 0 {
		contributor = resilience.NewExecutor(opts...).WrapContributor(contributor)
	}
	return contributor
}
