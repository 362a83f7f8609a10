// Package resilience provides caller-side policies for health contributors.
//
// A Contributor should answer quickly and honor its context, but real
// dependencies hang, flap and overload. Each pattern here implements
// ContributorPolicy and decorates a health.Contributor without changing
// its contract:
//
//   - Timeout reports a contributor that does not answer in time as DOWN
//     (or a configured status) with a TimeoutError detail.
//   - Retry re-evaluates a failing contributor with backoff.
//   - CircuitBreaker stops probing a dependency after repeated failures and
//     reports OUT_OF_SERVICE until a trial probe succeeds.
//   - Bulkhead caps concurrent probes of one dependency.
//   - RateLimiter caps the probe rate of one dependency.
//
// The patterns also expose Execute for plain operations.
//
// # Usage
//
//	executor := resilience.NewExecutor(
//	    resilience.WithTimeout(2*time.Second),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	        MaxFailures:  3,
//	        ResetTimeout: time.Minute,
//	    })),
//	)
//	_ = reg.Register("payments", executor.WrapContributor(paymentsProbe))
package resilience
