package health

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthops/observe"
)

// Registry is a named, ordered collection of contributors. A Registry is
// itself a Contributor, so registries nest to any depth.
//
// Registration is copy-on-write: an in-flight Health call works on the table
// as it was when the call started and never observes a partial update.
type Registry struct {
	mu      sync.Mutex // serializes writers
	entries atomic.Pointer[[]entry]

	aggregator StatusAggregator
	limit      int
	logger     observe.Logger
}

type entry struct {
	name        string
	contributor Contributor
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryAggregator sets the aggregator used for the registry's own
// status when it is evaluated as a contributor. Default: SimpleStatusAggregator.
func WithRegistryAggregator(agg StatusAggregator) RegistryOption {
	return func(r *Registry) {
		if agg != nil {
			r.aggregator = agg
		}
	}
}

// WithConcurrencyLimit bounds how many children are evaluated at once.
// Zero or negative means unbounded.
func WithConcurrencyLimit(n int) RegistryOption {
	return func(r *Registry) {
		r.limit = n
	}
}

// WithRegistryLogger sets the logger for isolated contributor faults.
func WithRegistryLogger(logger observe.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		aggregator: SimpleStatusAggregator(),
		logger:     observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	empty := []entry{}
	r.entries.Store(&empty)
	return r
}

func (r *Registry) load() []entry {
	return *r.entries.Load()
}

// Register adds a contributor under name. Names are unique within a
// registry: registering a name twice fails with ErrDuplicateContributor.
func (r *Registry) Register(name string, c Contributor) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if c == nil {
		return ErrNilContributor
	}
	if sub, ok := c.(*Registry); ok {
		if sub == nil {
			return ErrNilContributor
		}
		if sub.contains(r) {
			return fmt.Errorf("%w: %q", ErrCycle, name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.load()
	for _, e := range current {
		if e.name == name {
			return fmt.Errorf("%w: %q", ErrDuplicateContributor, name)
		}
	}

	next := make([]entry, len(current), len(current)+1)
	copy(next, current)
	next = append(next, entry{name: name, contributor: c})
	r.entries.Store(&next)
	return nil
}

// Unregister removes the contributor registered under name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.load()
	for i, e := range current {
		if e.name != name {
			continue
		}
		next := make([]entry, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		r.entries.Store(&next)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrContributorNotFound, name)
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	current := r.load()
	names := make([]string, len(current))
	for i, e := range current {
		names[i] = e.name
	}
	return names
}

// Contributor returns the contributor registered under name.
func (r *Registry) Contributor(name string) (Contributor, bool) {
	for _, e := range r.load() {
		if e.name == name {
			return e.contributor, true
		}
	}
	return nil, false
}

// Len returns the number of registered contributors.
func (r *Registry) Len() int {
	return len(r.load())
}

// contains reports whether target is r or is nested anywhere below r.
func (r *Registry) contains(target *Registry) bool {
	if r == target {
		return true
	}
	for _, e := range r.load() {
		if sub, ok := e.contributor.(*Registry); ok && sub.contains(target) {
			return true
		}
	}
	return false
}

// Snapshot evaluates every registered contributor concurrently and returns
// their health in registration order. A contributor that fails, panics, or
// returns an invalid Health is reported as DOWN; its siblings are unaffected.
func (r *Registry) Snapshot(ctx context.Context) Components {
	return r.snapshot(ctx, nil)
}

// snapshot evaluates the contributors named in include, or all of them when
// include is empty.
func (r *Registry) snapshot(ctx context.Context, include []string) Components {
	entries := r.load()
	if len(include) > 0 {
		entries = selectEntries(entries, include)
	}
	if len(entries) == 0 {
		return Components{}
	}

	results := make([]Health, len(entries))

	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for i, e := range entries {
		g.Go(func() error {
			results[i] = r.evaluate(ctx, e)
			return nil
		})
	}
	_ = g.Wait()

	var out Components
	for i, e := range entries {
		out.add(e.name, results[i])
	}
	return out
}

func selectEntries(entries []entry, include []string) []entry {
	keep := make(map[string]bool, len(include))
	for _, name := range include {
		keep[name] = true
	}
	selected := make([]entry, 0, len(include))
	for _, e := range entries {
		if keep[e.name] {
			selected = append(selected, e)
		}
	}
	return selected
}

// Health reports the aggregate of all registered contributors. The returned
// error is always nil.
func (r *Registry) Health(ctx context.Context) (Health, error) {
	components := r.Snapshot(ctx)
	return Health{
		status:     r.aggregator.AggregateStatus(components.Statuses()),
		components: components,
	}, nil
}

// evaluate invokes one contributor, converting every failure mode into a
// DOWN value at the call site.
func (r *Registry) evaluate(ctx context.Context, e entry) (h Health) {
	defer func() {
		if v := recover(); v != nil {
			err := &PanicError{Value: v}
			r.logger.Error(ctx, "health contributor panicked",
				observe.Field{Key: "component", Value: e.name},
				observe.Field{Key: "error", Value: err.Error()},
			)
			h = Down(WithError(err))
		}
	}()

	h, err := e.contributor.Health(ctx)
	if err != nil {
		r.logger.Warn(ctx, "health contributor failed",
			observe.Field{Key: "component", Value: e.name},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return Down(WithError(err))
	}
	if !h.Status().Valid() {
		r.logger.Warn(ctx, "health contributor returned invalid health",
			observe.Field{Key: "component", Value: e.name},
		)
		return Down(WithError(ErrInvalidHealth))
	}
	if d := h.Details(); len(d) > 0 {
		if _, err := json.Marshal(d); err != nil {
			r.logger.Warn(ctx, "health contributor returned unencodable details",
				observe.Field{Key: "component", Value: e.name},
				observe.Field{Key: "error", Value: err.Error()},
			)
			return Down(WithError(fmt.Errorf("%w: %v", ErrInvalidHealth, err)))
		}
	}
	return h
}

// Ensure Registry implements Contributor
var _ Contributor = (*Registry)(nil)
