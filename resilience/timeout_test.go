package resilience

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/healthops/health"
)

func TestNewTimeout_Defaults(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{})

	if timeout.Config().Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", timeout.Config().Timeout)
	}
	if timeout.Config().OnExpiry != health.StatusDown {
		t.Errorf("OnExpiry = %v, want DOWN", timeout.Config().OnExpiry)
	}
}

func TestTimeout_Execute(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})
	testErr := errors.New("test error")

	if err := timeout.Execute(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if err := timeout.Execute(context.Background(), func(context.Context) error { return testErr }); !errors.Is(err, testErr) {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
}

func TestTimeout_ExecuteExpires(t *testing.T) {
	err := ExecuteWithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	var te *TimeoutError
	if !errors.As(err, &te) || te.Timeout != 10*time.Millisecond {
		t.Errorf("Execute() error = %#v, want *TimeoutError", err)
	}
}

func TestTimeout_ExecuteContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := NewTimeout(TimeoutConfig{Timeout: time.Second}).Execute(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestTimeout_WrapContributorPassesThrough(t *testing.T) {
	c := NewTimeout(TimeoutConfig{Timeout: time.Second}).WrapContributor(health.Static(health.OutOfService()))

	h, err := c.Health(context.Background())
	if err != nil || h.Status() != health.StatusOutOfService {
		t.Errorf("Health() = %v, %v", h.Status(), err)
	}
}

func TestTimeout_WrapContributorExpires(t *testing.T) {
	slow := health.ContributorFunc(func(ctx context.Context) (health.Health, error) {
		<-ctx.Done()
		return health.Up(), nil
	})

	tests := []struct {
		name     string
		onExpiry health.Status
		want     health.Status
	}{
		{"default", 0, health.StatusDown},
		{"unknown", health.StatusUnknown, health.StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTimeout(TimeoutConfig{Timeout: 10 * time.Millisecond, OnExpiry: tt.onExpiry}).WrapContributor(slow)

			h, err := c.Health(context.Background())
			if err != nil {
				t.Fatalf("Health() error = %v", err)
			}
			if h.Status() != tt.want {
				t.Errorf("Status = %v, want %v", h.Status(), tt.want)
			}
			v, _ := h.Detail("error")
			if s, _ := v.(string); !strings.HasPrefix(s, "TimeoutError: ") {
				t.Errorf("error detail = %v, want TimeoutError prefix", v)
			}
		})
	}
}

func TestTimeout_WrapContributorCallerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewTimeout(TimeoutConfig{Timeout: time.Second}).WrapContributor(health.ContributorFunc(
		func(ctx context.Context) (health.Health, error) {
			cancel()
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			return health.Up(), nil
		}))

	if _, err := c.Health(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Health() error = %v, want context.Canceled", err)
	}
}
