package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// State is the circuit breaker state.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen refuses calls until ResetTimeout has passed.
	StateOpen
	// StateHalfOpen lets a limited number of trial calls through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the run of consecutive failures that opens the circuit.
	// Default: 5.
	MaxFailures int

	// ResetTimeout is how long the circuit stays open. Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMaxRequests bounds the trial calls while half-open. Default: 1.
	HalfOpenMaxRequests int

	// OnStateChange is called after every transition, outside the breaker's
	// lock.
	OnStateChange func(from, to State)

	// IsFailure classifies an error. Default: any non-nil error. A wrapped
	// contributor answering DOWN is presented as ErrReportedDown.
	IsFailure func(err error) bool

	// OpenStatus is what a wrapped contributor reports while the circuit
	// refuses probes. Default: StatusOutOfService.
	OpenStatus health.Status
}

// CircuitBreaker stops calling a dependency after repeated failures and
// tries it again once ResetTimeout has passed.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	now    func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	lastFailure time.Time
	openedAt    time.Time
	trials      int
}

// NewCircuitBreaker returns a closed breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	if !config.OpenStatus.Valid() {
		config.OpenStatus = health.StatusOutOfService
	}
	return &CircuitBreaker{config: config, now: time.Now}
}

// transition is a state change waiting to be reported.
type transition struct{ from, to State }

func (cb *CircuitBreaker) notify(changes []transition) {
	if cb.config.OnStateChange == nil {
		return
	}
	for _, t := range changes {
		cb.config.OnStateChange(t.from, t.to)
	}
}

// Execute runs op unless the circuit is open, in which case it returns
// ErrCircuitOpen without calling op. A panic in op counts as a failure and
// is re-raised.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			cb.record(&health.PanicError{Value: v})
			panic(v)
		}
	}()
	err := op(ctx)
	cb.record(err)
	return err
}

// WrapContributor guards c with the breaker. Errors and DOWN results count
// as failures. While open, c is not called and the wrapper reports
// OpenStatus with a "circuit" detail.
func (cb *CircuitBreaker) WrapContributor(c health.Contributor) health.Contributor {
	return health.ContributorFunc(func(ctx context.Context) (health.Health, error) {
		var h health.Health
		err := cb.Execute(ctx, probe(c, &h, true))
		if errors.Is(err, ErrCircuitOpen) {
			return health.WithStatus(cb.config.OpenStatus,
				health.WithDetail("circuit", StateOpen.String()),
			), nil
		}
		return settle(h, err)
	})
}

// State returns the current state. An open circuit whose ResetTimeout has
// passed reads as half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	changes := cb.refreshLocked()
	state := cb.state
	cb.mu.Unlock()

	cb.notify(changes)
	return state
}

// Reset closes the circuit and forgets all counts.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	changes := cb.moveLocked(StateClosed)
	cb.failures, cb.successes = 0, 0
	cb.mu.Unlock()

	cb.notify(changes)
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	changes := cb.refreshLocked()
	var err error
	switch cb.state {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if cb.trials >= cb.config.HalfOpenMaxRequests {
			err = ErrCircuitOpen
		} else {
			cb.trials++
		}
	}
	cb.mu.Unlock()

	cb.notify(changes)
	return err
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	var changes []transition
	failed := cb.config.IsFailure(err)
	if failed {
		cb.lastFailure = cb.now()
	}

	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			break
		}
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			changes = cb.moveLocked(StateOpen)
		}
	case StateHalfOpen:
		if failed {
			changes = cb.moveLocked(StateOpen)
			break
		}
		cb.successes++
		changes = cb.moveLocked(StateClosed)
		cb.failures, cb.successes = 0, 0
	}
	cb.mu.Unlock()

	cb.notify(changes)
}

// refreshLocked moves an expired open circuit to half-open.
func (cb *CircuitBreaker) refreshLocked() []transition {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.config.ResetTimeout {
		return cb.moveLocked(StateHalfOpen)
	}
	return nil
}

func (cb *CircuitBreaker) moveLocked(to State) []transition {
	from := cb.state
	cb.state = to
	cb.trials = 0
	if to == StateOpen {
		cb.openedAt = cb.now()
	}
	if from == to {
		return nil
	}
	return []transition{{from, to}}
}

// CircuitBreakerMetrics is a snapshot of breaker counters.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	Successes   int
	LastFailure time.Time
}

// Metrics returns a snapshot of the breaker.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	changes := cb.refreshLocked()
	m := CircuitBreakerMetrics{
		State:       cb.state,
		Failures:    cb.failures,
		Successes:   cb.successes,
		LastFailure: cb.lastFailure,
	}
	cb.mu.Unlock()

	cb.notify(changes)
	return m
}

var _ ContributorPolicy = (*CircuitBreaker)(nil)
