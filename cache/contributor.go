package cache

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/healthops/health"
)

// Contributor memoizes c under key for the TTL policy assigns to each
// snapshot's status. Concurrent misses share one evaluation of c. Errors
// are returned to every waiting caller and never cached.
//
// Collapsed callers all observe the context of the caller that started the
// evaluation.
func Contributor(key string, c health.Contributor, store Cache, policy Policy) health.Contributor {
	return &cachedContributor{
		key:    key,
		next:   c,
		store:  store,
		policy: policy,
		flight: new(singleflight.Group),
	}
}

type cachedContributor struct {
	key    string
	next   health.Contributor
	store  Cache
	policy Policy
	flight *singleflight.Group
}

func (cc *cachedContributor) Health(ctx context.Context) (health.Health, error) {
	if cc.store == nil || !cc.policy.ShouldCache() {
		return cc.next.Health(ctx)
	}

	if h, ok := cc.store.Get(ctx, cc.key); ok {
		return h, nil
	}

	v, err, _ := cc.flight.Do(cc.key, func() (any, error) {
		if h, ok := cc.store.Get(ctx, cc.key); ok {
			return h, nil
		}
		h, err := cc.next.Health(ctx)
		if err != nil {
			return nil, err
		}
		if ttl := cc.policy.TTLFor(h.Status()); ttl > 0 {
			_ = cc.store.Set(ctx, cc.key, h, ttl)
		}
		return h, nil
	})
	if err != nil {
		return health.Health{}, err
	}
	return v.(health.Health), nil
}
