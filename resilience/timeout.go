package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// TimeoutConfig bounds how long a contributor may take to answer.
type TimeoutConfig struct {
	// Timeout defaults to 30s.
	Timeout time.Duration

	// OnExpiry is reported for a contributor that ran out of time.
	// Defaults to DOWN.
	OnExpiry health.Status
}

// Timeout gives up on work that outlives its deadline.
type Timeout struct {
	config TimeoutConfig
}

func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if !config.OnExpiry.Valid() {
		config.OnExpiry = health.StatusDown
	}
	return &Timeout{config: config}
}

func (t *Timeout) Config() TimeoutConfig { return t.config }

// within runs fn under the deadline and returns as soon as either fn
// finishes or the deadline passes. An abandoned fn keeps running with a
// canceled context.
func within[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, &TimeoutError{Timeout: d}
		}
		return zero, ctx.Err()
	}
}

// Execute runs op with the configured deadline. Expiry is reported as a
// *TimeoutError.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := within(ctx, t.config.Timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// WrapContributor reports OnExpiry with a TimeoutError detail for an
// evaluation of c that does not finish in time. Cancellation of the
// caller's context is still returned as an error.
func (t *Timeout) WrapContributor(c health.Contributor) health.Contributor {
	return health.ContributorFunc(func(ctx context.Context) (health.Health, error) {
		h, err := within(ctx, t.config.Timeout, c.Health)
		var te *TimeoutError
		if errors.As(err, &te) {
			return health.WithStatus(t.config.OnExpiry, health.WithError(te)), nil
		}
		return h, err
	})
}

// ExecuteWithTimeout runs op under a one-off Timeout of d.
func ExecuteWithTimeout(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	return NewTimeout(TimeoutConfig{Timeout: d}).Execute(ctx, op)
}

var _ ContributorPolicy = (*Timeout)(nil)
