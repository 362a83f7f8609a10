package resilience

import (
	"context"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// Executor stacks several policies around one operation or contributor.
// Each policy is optional; the nesting order is fixed.
type Executor struct {
	circuitBreaker *CircuitBreaker
	retry          *Retry
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor returns an executor with the given policies.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker sets the circuit breaker.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.circuitBreaker = cb }
}

// WithRetry sets the retry policy.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// WithRateLimiter sets the rate limiter.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) { e.rateLimiter = rl }
}

// WithBulkhead sets the bulkhead.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// WithTimeout sets a per-attempt timeout with the default expiry status.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout}) }
}

// WithTimeoutConfig sets a configured timeout.
func WithTimeoutConfig(t *Timeout) ExecutorOption {
	return func(e *Executor) { e.timeout = t }
}

type policy interface {
	ContributorPolicy
	Execute(ctx context.Context, op func(context.Context) error) error
}

// policies returns the configured patterns from innermost to outermost:
// timeout, retry, circuit breaker, bulkhead, rate limiter.
func (e *Executor) policies() []policy {
	var out []policy
	if e.timeout != nil {
		out = append(out, e.timeout)
	}
	if e.retry != nil {
		out = append(out, e.retry)
	}
	if e.circuitBreaker != nil {
		out = append(out, e.circuitBreaker)
	}
	if e.bulkhead != nil {
		out = append(out, e.bulkhead)
	}
	if e.rateLimiter != nil {
		out = append(out, e.rateLimiter)
	}
	return out
}

// Execute runs op through every configured policy. The rate limiter is
// consulted first and the timeout applies to each individual attempt.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	execute := op
	for _, p := range e.policies() {
		inner, p := execute, p
		execute = func(ctx context.Context) error {
			return p.Execute(ctx, inner)
		}
	}
	return execute(ctx)
}

// WrapContributor decorates c with every configured pattern, in the same
// order as Execute.
func (e *Executor) WrapContributor(c health.Contributor) health.Contributor {
	for _, p := range e.policies() {
		c = p.WrapContributor(c)
	}
	return c
}

var _ ContributorPolicy = (*Executor)(nil)
