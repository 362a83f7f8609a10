package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/healthops/observe"
)

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("db", Static(Up())); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if err := reg.Register("cache", Static(Up())); err != nil {
		t.Fatalf("Register error = %v", err)
	}

	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "db" || names[1] != "cache" {
		t.Errorf("Names = %v, want [db cache]", names)
	}
	if _, ok := reg.Contributor("db"); !ok {
		t.Error("Contributor(db) should be found")
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register("db", Static(Up()))

	var nilReg *Registry
	tests := []struct {
		name        string
		regName     string
		contributor Contributor
		want        error
	}{
		{"empty name", "", Static(Up()), ErrInvalidName},
		{"blank name", "  ", Static(Up()), ErrInvalidName},
		{"nil contributor", "x", nil, ErrNilContributor},
		{"typed nil registry", "x", nilReg, ErrNilContributor},
		{"duplicate", "db", Static(Down()), ErrDuplicateContributor},
		{"self", "self", reg, ErrCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := reg.Register(tt.regName, tt.contributor); !errors.Is(err, tt.want) {
				t.Errorf("Register error = %v, want %v", err, tt.want)
			}
		})
	}

	// The rejected duplicate must not replace the original.
	h, _ := reg.Health(context.Background())
	if h.Status() != StatusUp {
		t.Errorf("Status = %v, want UP", h.Status())
	}
}

func TestRegistry_RegisterAncestorCycle(t *testing.T) {
	root := NewRegistry()
	child := NewRegistry()
	if err := root.Register("child", child); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if err := child.Register("root", root); !errors.Is(err, ErrCycle) {
		t.Errorf("Register(root) error = %v, want ErrCycle", err)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register("db", Static(Down()))

	if err := reg.Unregister("db"); err != nil {
		t.Fatalf("Unregister error = %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", reg.Len())
	}
	if err := reg.Unregister("db"); !errors.Is(err, ErrContributorNotFound) {
		t.Errorf("Unregister(missing) error = %v, want ErrContributorNotFound", err)
	}
}

func TestRegistry_HealthEmpty(t *testing.T) {
	h, err := NewRegistry().Health(context.Background())
	if err != nil {
		t.Fatalf("Health error = %v", err)
	}
	if h.Status() != StatusUp {
		t.Errorf("Status = %v, want UP", h.Status())
	}
	if h.Components().Len() != 0 {
		t.Errorf("Components = %d, want 0", h.Components().Len())
	}
}

func TestRegistry_FailureIsolation(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register("ok", Static(Up()))
	_ = reg.Register("errors", ContributorFunc(func(context.Context) (Health, error) {
		return Health{}, &TypeError{msg: "connection refused"}
	}))
	_ = reg.Register("panics", ContributorFunc(func(context.Context) (Health, error) {
		panic("boom")
	}))
	_ = reg.Register("invalid", Static(Health{}))
	_ = reg.Register("after", Static(Up()))

	h, err := reg.Health(context.Background())
	if err != nil {
		t.Fatalf("Health error = %v", err)
	}
	if h.Status() != StatusDown {
		t.Errorf("Status = %v, want DOWN", h.Status())
	}

	c := h.Components()
	wantNames := []string{"ok", "errors", "panics", "invalid", "after"}
	if got := c.Names(); fmt.Sprint(got) != fmt.Sprint(wantNames) {
		t.Fatalf("Names = %v, want %v", got, wantNames)
	}

	for _, name := range []string{"ok", "after"} {
		if sub, _ := c.Get(name); sub.Status() != StatusUp {
			t.Errorf("%s = %v, want UP", name, sub.Status())
		}
	}

	tests := map[string]string{
		"errors":  "TypeError: connection refused",
		"panics":  "PanicError: contributor panicked: boom",
		"invalid": "Error: " + ErrInvalidHealth.Error(),
	}
	for name, want := range tests {
		sub, _ := c.Get(name)
		if sub.Status() != StatusDown {
			t.Errorf("%s = %v, want DOWN", name, sub.Status())
		}
		if v, _ := sub.Detail("error"); v != want {
			t.Errorf("%s error detail = %q, want %q", name, v, want)
		}
	}
}

func TestRegistry_UnencodableDetailsAreIsolated(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register("good", Static(Up()))
	_ = reg.Register("bad", Static(Up(WithDetail("ratio", math.NaN()))))

	h, _ := reg.Health(context.Background())
	if h.Status() != StatusDown {
		t.Errorf("Status = %v, want DOWN", h.Status())
	}

	c := h.Components()
	if good, _ := c.Get("good"); good.Status() != StatusUp {
		t.Errorf("good = %v, want UP", good.Status())
	}
	bad, _ := c.Get("bad")
	if bad.Status() != StatusDown {
		t.Errorf("bad = %v, want DOWN", bad.Status())
	}
	if v, _ := bad.Detail("error"); !strings.Contains(fmt.Sprint(v), ErrInvalidHealth.Error()) {
		t.Errorf("bad error detail = %v, want it to mention %q", v, ErrInvalidHealth.Error())
	}

	if _, err := json.Marshal(h); err != nil {
		t.Errorf("json.Marshal(aggregate) error = %v", err)
	}
}

func TestRegistry_FaultsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	reg := NewRegistry(WithRegistryLogger(observe.NewLoggerWithWriter("debug", &buf)))
	_ = reg.Register("panics", ContributorFunc(func(context.Context) (Health, error) {
		panic("boom")
	}))

	_, _ = reg.Health(context.Background())

	if !strings.Contains(buf.String(), "health contributor panicked") {
		t.Errorf("expected panic log, got %q", buf.String())
	}
}

func TestRegistry_Nested(t *testing.T) {
	inner := NewRegistry()
	_ = inner.Register("replica", Static(OutOfService()))

	outer := NewRegistry()
	_ = outer.Register("db", inner)
	_ = outer.Register("cache", Static(Up()))

	h, _ := outer.Health(context.Background())
	if h.Status() != StatusOutOfService {
		t.Errorf("Status = %v, want OUT_OF_SERVICE", h.Status())
	}

	db, ok := h.Components().Get("db")
	if !ok {
		t.Fatal("db component missing")
	}
	if replica, ok := db.Components().Get("replica"); !ok || replica.Status() != StatusOutOfService {
		t.Errorf("nested replica = %v, %v", replica.Status(), ok)
	}
}

func TestRegistry_CustomAggregator(t *testing.T) {
	lenient := StatusAggregatorFunc(func([]Status) Status { return StatusUp })
	reg := NewRegistry(WithRegistryAggregator(lenient))
	_ = reg.Register("db", Static(Down()))

	h, _ := reg.Health(context.Background())
	if h.Status() != StatusUp {
		t.Errorf("Status = %v, want UP", h.Status())
	}
}

func TestRegistry_EvaluatesConcurrently(t *testing.T) {
	reg := NewRegistry()
	const n = 5
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		_ = reg.Register(fmt.Sprintf("c%d", i), ContributorFunc(func(ctx context.Context) (Health, error) {
			wg.Done()
			// Every contributor waits for all others to start.
			wg.Wait()
			return Up(), nil
		}))
	}

	done := make(chan struct{})
	go func() {
		_, _ = reg.Health(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("contributors were not evaluated concurrently")
	}
}

func TestRegistry_ConcurrencyLimit(t *testing.T) {
	reg := NewRegistry(WithConcurrencyLimit(2))

	var inFlight, peak atomic.Int32
	for i := 0; i < 8; i++ {
		_ = reg.Register(fmt.Sprintf("c%d", i), ContributorFunc(func(context.Context) (Health, error) {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return Up(), nil
		}))
	}

	h, _ := reg.Health(context.Background())
	if h.Components().Len() != 8 {
		t.Fatalf("Components = %d, want 8", h.Components().Len())
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

func TestRegistry_RegisterDuringHealth(t *testing.T) {
	reg := NewRegistry()
	started := make(chan struct{})
	release := make(chan struct{})
	_ = reg.Register("slow", ContributorFunc(func(context.Context) (Health, error) {
		close(started)
		<-release
		return Up(), nil
	}))

	result := make(chan Health)
	go func() {
		h, _ := reg.Health(context.Background())
		result <- h
	}()

	<-started
	if err := reg.Register("late", Static(Down())); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	close(release)

	h := <-result
	if h.Components().Len() != 1 {
		t.Errorf("in-flight Health saw %d components, want 1", h.Components().Len())
	}
	if h.Status() != StatusUp {
		t.Errorf("Status = %v, want UP", h.Status())
	}

	h, _ = reg.Health(context.Background())
	if h.Components().Len() != 2 || h.Status() != StatusDown {
		t.Errorf("next Health = %v with %d components", h.Status(), h.Components().Len())
	}
}

func TestRegistry_ConcurrentMutation(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("c%d", i)
			_ = reg.Register(name, Static(Up()))
			_ = reg.Unregister(name)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = reg.Health(ctx)
		}()
	}
	wg.Wait()

	if reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", reg.Len())
	}
}

func TestRegistry_ContextPropagated(t *testing.T) {
	type key struct{}
	reg := NewRegistry()
	_ = reg.Register("ctx", ContributorFunc(func(ctx context.Context) (Health, error) {
		if ctx.Value(key{}) != "v" {
			return Down(), nil
		}
		return Up(), nil
	}))

	h, _ := reg.Health(context.WithValue(context.Background(), key{}, "v"))
	if h.Status() != StatusUp {
		t.Errorf("Status = %v, want UP", h.Status())
	}
}
