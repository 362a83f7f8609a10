package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonwraymond/healthops/health"
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// Rate is the number of probes allowed per second. Default: 100.
	Rate float64

	// Burst is the bucket size. Default: 10.
	Burst int

	// WaitOnLimit makes Execute wait for a token instead of failing.
	WaitOnLimit bool

	// MaxWait bounds that wait. Default: 1s.
	MaxWait time.Duration
}

// RateLimiter is a token bucket. Wrapped around a contributor it keeps a
// busy health endpoint from turning into a probe storm against the
// dependency behind it.
type RateLimiter struct {
	config  RateLimiterConfig
	limiter atomic.Pointer[rate.Limiter]
}

// NewRateLimiter returns a limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}

	rl := &RateLimiter{config: config}
	rl.Reset()
	return rl
}

// Allow takes one token if available.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN takes n tokens if available.
func (rl *RateLimiter) AllowN(n int) bool {
	return rl.limiter.Load().AllowN(time.Now(), n)
}

// Wait blocks for one token.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.WaitN(ctx, 1)
}

// WaitN blocks for n tokens, for at most MaxWait. It returns ctx.Err() when
// ctx ends first and ErrRateLimitExceeded when the tokens would not arrive
// in time.
func (rl *RateLimiter) WaitN(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, rl.config.MaxWait)
	defer cancel()

	if err := rl.limiter.Load().WaitN(waitCtx, n); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrRateLimitExceeded, err)
	}
	return nil
}

// Execute runs op if a token is available, waiting for one when
// WaitOnLimit is set.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if rl.config.WaitOnLimit {
		if err := rl.Wait(ctx); err != nil {
			return err
		}
	} else if !rl.Allow() {
		return ErrRateLimitExceeded
	}
	return op(ctx)
}

// WrapContributor evaluates c only when a token is available. A throttled
// probe is not run and reports UNKNOWN with the rejection as detail.
func (rl *RateLimiter) WrapContributor(c health.Contributor) health.Contributor {
	return health.ContributorFunc(func(ctx context.Context) (health.Health, error) {
		var h health.Health
		err := rl.Execute(ctx, probe(c, &h, false))
		if errors.Is(err, ErrRateLimitExceeded) {
			return skipped(err), nil
		}
		return settle(h, err)
	})
}

// Tokens returns the number of tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	return rl.limiter.Load().Tokens()
}

// Reset refills the bucket.
func (rl *RateLimiter) Reset() {
	rl.limiter.Store(rate.NewLimiter(rate.Limit(rl.config.Rate), rl.config.Burst))
}

var _ ContributorPolicy = (*RateLimiter)(nil)
