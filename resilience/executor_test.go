package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/healthops/health"
)

func TestExecutor_PolicyOrder(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	retry := NewRetry(RetryConfig{})
	rl := NewRateLimiter(RateLimiterConfig{})
	b := NewBulkhead(BulkheadConfig{})

	e := NewExecutor(
		WithRateLimiter(rl),
		WithCircuitBreaker(cb),
		WithBulkhead(b),
		WithRetry(retry),
		WithTimeout(time.Second),
	)

	got := e.policies()
	if len(got) != 5 {
		t.Fatalf("len(policies()) = %d, want 5", len(got))
	}
	if _, ok := got[0].(*Timeout); !ok {
		t.Errorf("policies()[0] = %T, want *Timeout", got[0])
	}
	want := []policy{retry, cb, b, rl}
	for i, p := range want {
		if got[i+1] != p {
			t.Errorf("policies()[%d] = %T, want %T", i+1, got[i+1], p)
		}
	}
}

func TestExecutor_ExecuteWithoutPatterns(t *testing.T) {
	testErr := errors.New("boom")
	e := NewExecutor()

	if len(e.policies()) != 0 {
		t.Fatal("default executor should have no policies")
	}
	if err := e.Execute(context.Background(), failing(testErr)); !errors.Is(err, testErr) {
		t.Errorf("Execute() = %v, want %v", err, testErr)
	}
}

func TestExecutor_ExecuteComposed(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour})
	e := NewExecutor(
		WithCircuitBreaker(cb),
		WithRetry(fastRetry(3, false)),
		WithTimeout(time.Second),
	)

	attempts := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("circuit = %v, want closed after retried success", cb.State())
	}
}

func TestExecutor_WrapContributor(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour})
	e := NewExecutor(
		WithCircuitBreaker(cb),
		WithRetry(fastRetry(2, true)),
	)

	t.Run("retry absorbs a transient DOWN", func(t *testing.T) {
		h, err := e.WrapContributor(script(down(), up())).Health(context.Background())
		if err != nil || h.Status() != health.StatusUp {
			t.Fatalf("Health() = %v, %v, want UP", h.Status(), err)
		}
		if cb.State() != StateClosed {
			t.Errorf("circuit = %v, want closed", cb.State())
		}
	})

	t.Run("persistent DOWN opens the circuit", func(t *testing.T) {
		c := script(down())
		wrapped := e.WrapContributor(c)

		h, err := wrapped.Health(context.Background())
		if err != nil || h.Status() != health.StatusDown {
			t.Fatalf("Health() = %v, %v, want DOWN", h.Status(), err)
		}
		h, _ = wrapped.Health(context.Background())
		if h.Status() != health.StatusOutOfService {
			t.Errorf("status = %v, want OUT_OF_SERVICE while open", h.Status())
		}
		if n := c.calls.Load(); n != 2 {
			t.Errorf("calls = %d, want 2", n)
		}
	})
}
