package health

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/token"
	"reflect"
)

// Health is an immutable snapshot of a component's health: a status plus
// optional structured details. Snapshots produced by a Registry also carry
// the health of each child component.
//
// Health values hold no references to live resources and are safe to share
// between goroutines.
type Health struct {
	status     Status
	details    map[string]any
	components Components
}

// Option configures a Health value at construction.
type Option func(*options)

type options struct {
	details map[string]any
	err     error
}

// WithDetails merges details into the health details.
// The map is copied; nested values must be JSON-compatible.
func WithDetails(details map[string]any) Option {
	return func(o *options) {
		for k, v := range details {
			o.set(k, v)
		}
	}
}

// WithDetail sets a single detail entry.
func WithDetail(key string, value any) Option {
	return func(o *options) {
		o.set(key, value)
	}
}

// WithError records err as the "error" detail, rendered as
// "<ErrorKind>: <message>". The error value itself is not retained.
func WithError(err error) Option {
	return func(o *options) {
		if err != nil {
			o.err = err
		}
	}
}

func (o *options) set(key string, value any) {
	if o.details == nil {
		o.details = make(map[string]any)
	}
	o.details[key] = value
}

// New returns the default health value: UNKNOWN without details.
func New() Health {
	return Health{status: StatusUnknown}
}

// WithStatus creates a health value with an explicit status.
func WithStatus(status Status, opts ...Option) Health {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		o.set("error", ErrorString(o.err))
	}
	return Health{status: status, details: o.details}
}

// Up creates a healthy value.
func Up(opts ...Option) Health {
	return WithStatus(StatusUp, opts...)
}

// Down creates a failed value.
func Down(opts ...Option) Health {
	return WithStatus(StatusDown, opts...)
}

// OutOfService creates a value for a component taken out of service.
func OutOfService(opts ...Option) Health {
	return WithStatus(StatusOutOfService, opts...)
}

// Unknown creates a value for a component whose health is indeterminate.
func Unknown(opts ...Option) Health {
	return WithStatus(StatusUnknown, opts...)
}

// Status returns the health status.
func (h Health) Status() Status {
	return h.status
}

// Details returns a copy of the details, or nil if there are none.
func (h Health) Details() map[string]any {
	if len(h.details) == 0 {
		return nil
	}
	out := make(map[string]any, len(h.details))
	for k, v := range h.details {
		out[k] = v
	}
	return out
}

// Detail returns a single detail entry.
func (h Health) Detail(key string) (any, bool) {
	v, ok := h.details[key]
	return v, ok
}

// Components returns the child snapshots of a composite health value.
func (h Health) Components() Components {
	return h.components
}

type healthJSON struct {
	Status     Status         `json:"status"`
	Details    map[string]any `json:"details,omitempty"`
	Components *Components    `json:"components,omitempty"`
}

// MarshalJSON encodes the health value, omitting empty details and components.
func (h Health) MarshalJSON() ([]byte, error) {
	out := healthJSON{Status: h.status, Details: h.details}
	if h.components.Len() > 0 {
		out.Components = &h.components
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a health value produced by MarshalJSON.
func (h *Health) UnmarshalJSON(data []byte) error {
	var in healthJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: missing status", ErrInvalidStatus)
	}
	*h = Health{status: in.Status, details: in.Details}
	if in.Components != nil {
		h.components = *in.Components
	}
	return nil
}

// ErrorKind names the kind of err. Errors implementing Kind() string name
// themselves; otherwise the exported type name is used (pointer stripped),
// falling back to "Error" for unexported or anonymous types.
func ErrorKind(err error) string {
	if k, ok := err.(interface{ Kind() string }); ok {
		if kind := k.Kind(); kind != "" {
			return kind
		}
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || !token.IsExported(t.Name()) {
		return "Error"
	}
	return t.Name()
}

// ErrorString renders err as "<ErrorKind>: <message>".
func ErrorString(err error) string {
	return ErrorKind(err) + ": " + err.Error()
}

// Components is an insertion-ordered mapping of component name to Health.
// The zero value is empty.
type Components struct {
	names  []string
	byName map[string]Health
}

// Len returns the number of components.
func (c Components) Len() int {
	return len(c.names)
}

// Names returns component names in insertion order.
func (c Components) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// Get returns the named component's health.
func (c Components) Get(name string) (Health, bool) {
	h, ok := c.byName[name]
	return h, ok
}

// Statuses returns the component statuses in insertion order.
func (c Components) Statuses() []Status {
	statuses := make([]Status, len(c.names))
	for i, name := range c.names {
		statuses[i] = c.byName[name].status
	}
	return statuses
}

func (c *Components) add(name string, h Health) {
	if c.byName == nil {
		c.byName = make(map[string]Health)
	}
	if _, exists := c.byName[name]; !exists {
		c.names = append(c.names, name)
	}
	c.byName[name] = h
}

// MarshalJSON encodes the components as a JSON object in insertion order.
func (c Components) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.byName[name])
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (c *Components) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = Components{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("health: components must be a JSON object")
	}

	var out Components
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var h Health
		if err := dec.Decode(&h); err != nil {
			return fmt.Errorf("component %q: %w", name, err)
		}
		out.add(name, h)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}
