package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/jonwraymond/healthops/health"
)

// BackoffStrategy selects how the delay grows between attempts.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay by Multiplier each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear grows the delay by InitialDelay each attempt.
	BackoffLinear
	// BackoffConstant waits InitialDelay every time.
	BackoffConstant
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts counts the first attempt too. Default: 3.
	MaxAttempts int

	// InitialDelay is the wait before the first retry. Default: 100ms.
	InitialDelay time.Duration

	// MaxDelay caps a single wait. Default: 30s.
	MaxDelay time.Duration

	// Multiplier drives BackoffExponential. Default: 2.0.
	Multiplier float64

	Strategy BackoffStrategy

	// Jitter stretches each wait by up to 25%, still capped by MaxDelay.
	Jitter bool

	// MaxElapsed stops retrying once the next wait would end past it.
	// Zero means only MaxAttempts applies.
	MaxElapsed time.Duration

	// RetryIf reports whether err is worth another attempt. Default: any
	// non-nil error.
	RetryIf func(err error) bool

	// RetryOnDown makes a wrapped contributor retry DOWN results as well as
	// errors. RetryIf sees them as ErrReportedDown.
	RetryOnDown bool

	// OnRetry is called before each wait with the attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-runs a failing operation with backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry returns a retry policy.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	return &Retry{config: config}
}

// Execute runs op until it succeeds, RetryIf rejects its error, attempts
// run out or ctx ends. The last error is returned.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	attempt := 0
	opts := []backoff.RetryOption{
		backoff.WithBackOff(&schedule{retry: r}),
		backoff.WithMaxTries(uint(r.config.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			attempt++
			if r.config.OnRetry != nil {
				r.config.OnRetry(attempt, err, next)
			}
		}),
	}
	if r.config.MaxElapsed > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(r.config.MaxElapsed))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op(ctx)
		if err != nil && !r.config.RetryIf(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, opts...)
	return err
}

// WrapContributor re-evaluates c while it fails, up to MaxAttempts. The
// result of the last attempt is returned.
func (r *Retry) WrapContributor(c health.Contributor) health.Contributor {
	return health.ContributorFunc(func(ctx context.Context) (health.Health, error) {
		var h health.Health
		err := r.Execute(ctx, probe(c, &h, r.config.RetryOnDown))
		return settle(h, err)
	})
}

// delay returns the wait after the given failed attempt (1-based).
func (r *Retry) delay(attempt int) time.Duration {
	cfg := r.config
	var d time.Duration
	switch cfg.Strategy {
	case BackoffConstant:
		d = cfg.InitialDelay
	case BackoffLinear:
		d = cfg.InitialDelay * time.Duration(attempt)
	default:
		d = time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1)))
	}
	d = min(d, cfg.MaxDelay)

	if cfg.Jitter && d >= 4 {
		// #nosec G404 -- timing jitter, not security sensitive.
		d += time.Duration(rand.Int64N(int64(d / 4)))
	}
	return min(d, cfg.MaxDelay)
}

// Config returns the effective configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}

// schedule feeds Retry's delays to backoff.Retry, one per Execute call.
type schedule struct {
	retry   *Retry
	attempt int
}

func (s *schedule) NextBackOff() time.Duration {
	s.attempt++
	return s.retry.delay(s.attempt)
}

func (s *schedule) Reset() { s.attempt = 0 }

var (
	_ ContributorPolicy = (*Retry)(nil)
	_ backoff.BackOff   = (*schedule)(nil)
)
