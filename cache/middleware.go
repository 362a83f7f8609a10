package cache

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// SkipRule reports whether a component must be probed on every request.
type SkipRule func(meta observe.ComponentMeta) bool

// UncachedTags mark components whose answer must always be fresh.
var UncachedTags = []string{"liveness", "realtime", "nocache"}

// DefaultSkipRule skips components tagged with any of UncachedTags.
// Tag matching is case-insensitive.
func DefaultSkipRule(meta observe.ComponentMeta) bool {
	for _, tag := range meta.Tags {
		for _, uncached := range UncachedTags {
			if strings.EqualFold(tag, uncached) {
				return true
			}
		}
	}
	return false
}

// Middleware caches many contributors in one store, deriving each key from
// the component's metadata.
type Middleware struct {
	store    Cache
	keyer    Keyer
	policy   Policy
	skipRule SkipRule
	flight   singleflight.Group
}

// NewMiddleware creates a cache middleware.
// If keyer is nil, DefaultKeyer is used. If skipRule is nil, DefaultSkipRule is used.
func NewMiddleware(store Cache, keyer Keyer, policy Policy, skipRule SkipRule) (*Middleware, error) {
	if store == nil {
		return nil, ErrNilCache
	}
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	if skipRule == nil {
		skipRule = DefaultSkipRule
	}
	return &Middleware{
		store:    store,
		keyer:    keyer,
		policy:   policy,
		skipRule: skipRule,
	}, nil
}

// Wrap returns c cached under the key derived from meta. Components matched
// by the skip rule, or whose key cannot be derived, are returned unwrapped.
func (m *Middleware) Wrap(meta observe.ComponentMeta, c health.Contributor) health.Contributor {
	if !m.policy.ShouldCache() || m.skipRule(meta) {
		return c
	}

	key, err := m.keyer.Key(meta.ComponentID(), meta.Tags)
	if err != nil {
		return c
	}

	return &cachedContributor{
		key:    key,
		next:   c,
		store:  m.store,
		policy: m.policy,
		flight: &m.flight,
	}
}

// Invalidate drops the cached snapshot for meta.
func (m *Middleware) Invalidate(ctx context.Context, meta observe.ComponentMeta) error {
	key, err := m.keyer.Key(meta.ComponentID(), meta.Tags)
	if err != nil {
		return err
	}
	return m.store.Delete(ctx, key)
}
