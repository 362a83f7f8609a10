package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/healthops/health"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of slots. Default: 10.
	MaxConcurrent int

	// MaxWait is how long Acquire waits for a slot. Zero fails at once.
	MaxWait time.Duration
}

// Bulkhead caps concurrent calls. Shared by several endpoints or groups, it
// bounds how many probes hit one fragile dependency at once.
type Bulkhead struct {
	config BulkheadConfig
	slots  *semaphore.Weighted

	active    atomic.Int64
	maxActive atomic.Int64
	rejected  atomic.Int64
}

// NewBulkhead returns a bulkhead with all slots free.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &Bulkhead{
		config: config,
		slots:  semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Acquire takes a slot, waiting up to MaxWait. It returns ErrBulkheadFull
// when none frees up in time and ctx.Err() when ctx ends first.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if b.slots.TryAcquire(1) {
		b.admitted()
		return nil
	}
	if b.config.MaxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}

	waitCtx, cancel := context.WithTimeout(ctx, b.config.MaxWait)
	defer cancel()
	if err := b.slots.Acquire(waitCtx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		b.rejected.Add(1)
		return ErrBulkheadFull
	}
	b.admitted()
	return nil
}

func (b *Bulkhead) admitted() {
	n := b.active.Add(1)
	for {
		peak := b.maxActive.Load()
		if n <= peak || b.maxActive.CompareAndSwap(peak, n) {
			return
		}
	}
}

// Release frees a slot. A Release without a matching Acquire is ignored.
func (b *Bulkhead) Release() {
	for {
		n := b.active.Load()
		if n <= 0 {
			return
		}
		if b.active.CompareAndSwap(n, n-1) {
			b.slots.Release(1)
			return
		}
	}
}

// Execute runs op in a slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()
	return op(ctx)
}

// WrapContributor runs c inside the bulkhead. A probe that finds no free
// slot is not run and reports UNKNOWN with the rejection as detail.
func (b *Bulkhead) WrapContributor(c health.Contributor) health.Contributor {
	return health.ContributorFunc(func(ctx context.Context) (health.Health, error) {
		var h health.Health
		err := b.Execute(ctx, probe(c, &h, false))
		if errors.Is(err, ErrBulkheadFull) {
			return skipped(err), nil
		}
		return settle(h, err)
	})
}

// BulkheadMetrics is a snapshot of bulkhead counters.
type BulkheadMetrics struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int
	Rejected      int64
}

// Metrics returns a snapshot of the bulkhead.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	active := int(b.active.Load())
	return BulkheadMetrics{
		Active:        active,
		MaxActive:     int(b.maxActive.Load()),
		Available:     b.config.MaxConcurrent - active,
		MaxConcurrent: b.config.MaxConcurrent,
		Rejected:      b.rejected.Load(),
	}
}

var _ ContributorPolicy = (*Bulkhead)(nil)
