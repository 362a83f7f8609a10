package health

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jonwraymond/healthops/observe"
)

// DefaultGroup is the group used when Endpoint.Health is called with an
// empty group name.
const DefaultGroup = "primary"

// Group pairs the policies used to report a set of contributors.
type Group struct {
	// StatusAggregator computes the overall status from the direct children.
	StatusAggregator StatusAggregator

	// HTTPCodeStatusMapper maps the overall status to a response code.
	HTTPCodeStatusMapper HTTPCodeStatusMapper

	// Include restricts the group to the named direct children.
	// Empty means every registered contributor.
	Include []string
}

// DefaultGroups returns the conventional configuration: a single "primary"
// group with the simple aggregator and mapper.
func DefaultGroups() map[string]Group {
	return map[string]Group{
		DefaultGroup: {
			StatusAggregator:     SimpleStatusAggregator(),
			HTTPCodeStatusMapper: SimpleHTTPCodeStatusMapper(),
		},
	}
}

// Response is the transport-ready result of an endpoint evaluation.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// Body is the JSON payload.
	Body Body
}

// Body is the response payload: the overall status and, when at least one
// contributor was evaluated, each component's health.
type Body struct {
	Status     Status
	Components Components
}

// MarshalJSON encodes the body, omitting components when there are none.
func (b Body) MarshalJSON() ([]byte, error) {
	out := healthJSON{Status: b.Status}
	if b.Components.Len() > 0 {
		out.Components = &b.Components
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a body produced by MarshalJSON.
func (b *Body) UnmarshalJSON(data []byte) error {
	var h Health
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	*b = Body{Status: h.status, Components: h.components}
	return nil
}

// Endpoint evaluates a registry under the policy of a named group.
// It holds no state between calls.
type Endpoint struct {
	registry     *Registry
	groups       map[string]Group
	defaultGroup string
	logger       observe.Logger
	metrics      observe.Metrics
}

// EndpointOption configures an Endpoint.
type EndpointOption func(*Endpoint)

// WithLogger sets the endpoint logger. Default: no-op.
func WithLogger(logger observe.Logger) EndpointOption {
	return func(e *Endpoint) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records one measurement per group evaluation.
func WithMetrics(metrics observe.Metrics) EndpointOption {
	return func(e *Endpoint) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// WithDefaultGroup changes the group used for an empty group name.
func WithDefaultGroup(name string) EndpointOption {
	return func(e *Endpoint) {
		e.defaultGroup = name
	}
}

// NewEndpoint creates an endpoint over reg. A nil groups map means
// DefaultGroups. Configuration faults are reported here rather than at
// evaluation time.
func NewEndpoint(reg *Registry, groups map[string]Group, opts ...EndpointOption) (*Endpoint, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if groups == nil {
		groups = DefaultGroups()
	}
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}

	e := &Endpoint{
		registry:     reg,
		groups:       make(map[string]Group, len(groups)),
		defaultGroup: DefaultGroup,
		logger:       observe.NopLogger(),
		metrics:      observe.NopMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for name, g := range groups {
		if g.StatusAggregator == nil {
			return nil, fmt.Errorf("%w: %q has no status aggregator", ErrMisconfiguredGroup, name)
		}
		if g.HTTPCodeStatusMapper == nil {
			return nil, fmt.Errorf("%w: %q has no status mapper", ErrMisconfiguredGroup, name)
		}
		if err := CheckMapper(g.HTTPCodeStatusMapper); err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		g.Include = append([]string(nil), g.Include...)
		e.groups[name] = g
	}

	if _, ok := e.groups[e.defaultGroup]; !ok {
		return nil, fmt.Errorf("%w: default group %q", ErrUnknownGroup, e.defaultGroup)
	}

	return e, nil
}

// Groups returns the configured group names, sorted.
func (e *Endpoint) Groups() []string {
	names := make([]string, 0, len(e.groups))
	for name := range e.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultGroup returns the group used for an empty group name.
func (e *Endpoint) DefaultGroup() string {
	return e.defaultGroup
}

// Health evaluates the registry for group ("" selects the default group).
// The only error is ErrUnknownGroup; unhealthy contributors surface in the
// response, never as an error.
func (e *Endpoint) Health(ctx context.Context, group string) (Response, error) {
	if group == "" {
		group = e.defaultGroup
	}
	g, ok := e.groups[group]
	if !ok {
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}

	start := time.Now()

	components := e.registry.snapshot(ctx, g.Include)
	status := g.StatusAggregator.AggregateStatus(components.Statuses())
	code := g.HTTPCodeStatusMapper.MapStatusToCode(status)

	duration := time.Since(start)
	meta := observe.ComponentMeta{Group: group}
	e.metrics.RecordCheck(ctx, meta, status.String(), duration, nil)
	e.logger.Debug(ctx, "health evaluated",
		observe.Field{Key: "group", Value: group},
		observe.Field{Key: "status", Value: status.String()},
		observe.Field{Key: "code", Value: code},
		observe.Field{Key: "components", Value: components.Len()},
		observe.Field{Key: "duration_ms", Value: float64(duration.Milliseconds())},
	)

	return Response{
		Status: code,
		Body:   Body{Status: status, Components: components},
	}, nil
}
