package cache

import (
	"time"

	"github.com/jonwraymond/healthops/health"
)

// Policy configures how long snapshots are cached.
type Policy struct {
	// DefaultTTL applies to UP snapshots. Zero disables caching.
	DefaultTTL time.Duration

	// MaxTTL caps every TTL. Zero means no cap.
	MaxTTL time.Duration

	// FailureTTL applies to snapshots that are not UP. Zero means
	// DefaultTTL; a negative value disables caching of failures so that
	// recovery is noticed on the next probe.
	FailureTTL time.Duration
}

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 10 seconds, MaxTTL: 1 minute, FailureTTL: same as DefaultTTL.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 10 * time.Second,
		MaxTTL:     time.Minute,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache reports whether caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns override, or DefaultTTL when override <= 0, clamped
// to MaxTTL.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	return p.clamp(ttl)
}

// TTLFor returns the TTL for a snapshot reporting status. A result <= 0
// means the snapshot must not be cached.
func (p Policy) TTLFor(status health.Status) time.Duration {
	if !p.ShouldCache() {
		return 0
	}
	if status == health.StatusUp {
		return p.clamp(p.DefaultTTL)
	}
	switch {
	case p.FailureTTL < 0:
		return 0
	case p.FailureTTL == 0:
		return p.clamp(p.DefaultTTL)
	default:
		return p.clamp(p.FailureTTL)
	}
}

func (p Policy) clamp(ttl time.Duration) time.Duration {
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		return p.MaxTTL
	}
	return ttl
}
