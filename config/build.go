package config

import (
	"fmt"

	"github.com/jonwraymond/healthops/auth"
	"github.com/jonwraymond/healthops/cache"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// HealthGroups builds the endpoint group map.
func (c *Config) HealthGroups() (map[string]health.Group, error) {
	groups := make(map[string]health.Group, len(c.Groups))
	for name, gc := range c.Groups {
		g, err := gc.build()
		if err != nil {
			return nil, fmt.Errorf("config: group %q: %w", name, err)
		}
		groups[name] = g
	}
	return groups, nil
}

func (gc GroupConfig) build() (health.Group, error) {
	g := health.Group{
		StatusAggregator:     health.SimpleStatusAggregator(),
		HTTPCodeStatusMapper: health.SimpleHTTPCodeStatusMapper(),
		Include:              gc.Include,
	}

	if len(gc.Order) > 0 {
		order := make([]health.Status, len(gc.Order))
		for i, s := range gc.Order {
			status, err := health.ParseStatus(s)
			if err != nil {
				return health.Group{}, err
			}
			order[i] = status
		}
		agg, err := health.NewOrderedStatusAggregator(order...)
		if err != nil {
			return health.Group{}, err
		}
		g.StatusAggregator = agg
	}

	if len(gc.HTTPMapping) > 0 {
		overrides := make(map[health.Status]int, len(gc.HTTPMapping))
		for s, code := range gc.HTTPMapping {
			status, err := health.ParseStatus(s)
			if err != nil {
				return health.Group{}, err
			}
			overrides[status] = code
		}
		mapper, err := health.NewMappingHTTPCodeStatusMapper(overrides)
		if err != nil {
			return health.Group{}, err
		}
		g.HTTPCodeStatusMapper = mapper
	}

	return g, nil
}

// RegistryOptions returns the registry options the configuration implies.
func (c *Config) RegistryOptions() []health.RegistryOption {
	var opts []health.RegistryOption
	if c.Registry.ConcurrencyLimit > 0 {
		opts = append(opts, health.WithConcurrencyLimit(c.Registry.ConcurrencyLimit))
	}
	return opts
}

// CacheMiddleware returns a snapshot cache middleware over a bounded LRU
// store, or nil when cache.ttl is unset.
func (c *Config) CacheMiddleware() (*cache.Middleware, error) {
	if c.Cache.TTL <= 0 {
		return nil, nil
	}
	store, err := cache.NewLRUCache(c.Cache.Size)
	if err != nil {
		return nil, fmt.Errorf("config: cache: %w", err)
	}
	return cache.NewMiddleware(store, nil, cache.Policy{
		DefaultTTL: c.Cache.TTL,
		MaxTTL:     c.Cache.MaxTTL,
		FailureTTL: c.Cache.FailureTTL,
	}, nil)
}

// NewEndpoint builds an endpoint over reg with the configured groups and
// default group. Extra options are applied after the configured ones.
func (c *Config) NewEndpoint(reg *health.Registry, opts ...health.EndpointOption) (*health.Endpoint, error) {
	groups, err := c.HealthGroups()
	if err != nil {
		return nil, err
	}
	all := append([]health.EndpointOption{health.WithDefaultGroup(c.DefaultGroup)}, opts...)
	return health.NewEndpoint(reg, groups, all...)
}

// Authenticator builds the configured authenticator, or returns nil when
// neither API keys nor JWT are configured.
func (c *Config) Authenticator() (auth.Authenticator, error) {
	var members []auth.Authenticator

	if jc := c.HTTP.JWT; jc != nil {
		members = append(members, auth.NewJWTAuthenticator(auth.JWTConfig{
			Issuer:     jc.Issuer,
			Audience:   jc.Audience,
			RolesClaim: jc.RolesClaim,
		}, auth.NewStaticKeyProvider([]byte(jc.HMACSecret))))
	}

	if len(c.HTTP.APIKeys) > 0 {
		store := auth.NewMemoryAPIKeyStore()
		for i, k := range c.HTTP.APIKeys {
			id := k.ID
			if id == "" {
				id = fmt.Sprintf("key-%d", i)
			}
			if err := store.AddKey(id, k.Key, k.Principal, k.Roles...); err != nil {
				return nil, fmt.Errorf("config: http.api_keys[%d]: %w", i, err)
			}
		}
		members = append(members, auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, store))
	}

	switch len(members) {
	case 0:
		return nil, nil
	case 1:
		return members[0], nil
	default:
		return auth.NewCompositeAuthenticator(members...), nil
	}
}

// HandlerOptions returns the HTTP handler options the configuration
// implies, including the authorizer for when_authorized.
func (c *Config) HandlerOptions() ([]health.HandlerOption, error) {
	show, _ := health.ParseShowDetails(c.HTTP.ShowDetails)
	opts := []health.HandlerOption{
		health.WithShowDetails(show),
		health.WithRequestTimeout(c.HTTP.RequestTimeout),
	}

	a, err := c.Authenticator()
	if err != nil {
		return nil, err
	}
	if a != nil {
		opts = append(opts, health.WithAuthorizer(auth.RequestAuthorizer(a, c.HTTP.RequiredRoles...)))
	}
	return opts, nil
}

// ObserveConfig returns the telemetry configuration.
func (c *Config) ObserveConfig() observe.Config {
	return c.observeConfig()
}
