package resilience

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSentinelErrors(t *testing.T) {
	for _, err := range []error{
		ErrCircuitOpen,
		ErrRateLimitExceeded,
		ErrBulkheadFull,
		ErrTimeout,
		ErrReportedDown,
	} {
		if !strings.HasPrefix(err.Error(), "resilience: ") {
			t.Errorf("%q lacks the package prefix", err)
		}
	}
}

func TestTimeoutError(t *testing.T) {
	var err error = &TimeoutError{Timeout: 250 * time.Millisecond}

	if !errors.Is(err, ErrTimeout) {
		t.Error("TimeoutError should match ErrTimeout")
	}
	if errors.Is(err, ErrCircuitOpen) {
		t.Error("TimeoutError should not match ErrCircuitOpen")
	}
	if got, want := err.Error(), "health check did not complete within 250ms"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
