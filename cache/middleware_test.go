package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

func TestNewMiddleware_NilCache(t *testing.T) {
	if _, err := NewMiddleware(nil, nil, DefaultPolicy(), nil); !errors.Is(err, ErrNilCache) {
		t.Errorf("NewMiddleware(nil) error = %v, want ErrNilCache", err)
	}
}

func TestDefaultSkipRule(t *testing.T) {
	tests := []struct {
		tags []string
		want bool
	}{
		{nil, false},
		{[]string{"database"}, false},
		{[]string{"database", "Liveness"}, true},
		{[]string{"REALTIME"}, true},
		{[]string{"nocache"}, true},
	}
	for _, tt := range tests {
		if got := DefaultSkipRule(observe.ComponentMeta{Name: "x", Tags: tt.tags}); got != tt.want {
			t.Errorf("DefaultSkipRule(%v) = %v, want %v", tt.tags, got, tt.want)
		}
	}
}

func TestMiddleware_Wrap(t *testing.T) {
	mw, err := NewMiddleware(NewMemoryCache(), nil, DefaultPolicy(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	t.Run("cached", func(t *testing.T) {
		next := &counting{h: health.Up()}
		c := mw.Wrap(observe.ComponentMeta{Name: "db", Tags: []string{"database"}}, next)
		_, _ = c.Health(ctx)
		_, _ = c.Health(ctx)
		if n := next.calls.Load(); n != 1 {
			t.Errorf("calls = %d, want 1", n)
		}
	})

	t.Run("skipped by tag", func(t *testing.T) {
		next := &counting{h: health.Up()}
		c := mw.Wrap(observe.ComponentMeta{Name: "ping", Tags: []string{"liveness"}}, next)
		if c != next {
			t.Error("Wrap() should return the contributor unchanged")
		}
	})

	t.Run("distinct components do not share entries", func(t *testing.T) {
		a := mw.Wrap(observe.ComponentMeta{Name: "a"}, health.Static(health.Up()))
		b := mw.Wrap(observe.ComponentMeta{Name: "b"}, health.Static(health.Down()))
		ha, _ := a.Health(ctx)
		hb, _ := b.Health(ctx)
		if ha.Status() != health.StatusUp || hb.Status() != health.StatusDown {
			t.Errorf("statuses = %v, %v, want UP, DOWN", ha.Status(), hb.Status())
		}
	})
}

func TestMiddleware_Invalidate(t *testing.T) {
	mw, _ := NewMiddleware(NewMemoryCache(), nil, DefaultPolicy(), nil)
	meta := observe.ComponentMeta{Group: "primary", Name: "db"}
	next := &counting{h: health.Up()}
	c := mw.Wrap(meta, next)
	ctx := context.Background()

	_, _ = c.Health(ctx)
	if err := mw.Invalidate(ctx, meta); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	_, _ = c.Health(ctx)

	if n := next.calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}
