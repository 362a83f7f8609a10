package observe

import "go.opentelemetry.io/otel/attribute"

// ComponentMeta identifies what is being evaluated for telemetry purposes.
type ComponentMeta struct {
	Group string   // Endpoint group (may be empty)
	Name  string   // Component name; empty for a whole-group evaluation
	Tags  []string // Free-form tags, e.g. "database" (optional)
}

// ComponentID returns "<group>.<name>", or whichever of the two is set.
func (m ComponentMeta) ComponentID() string {
	switch {
	case m.Group != "" && m.Name != "":
		return m.Group + "." + m.Name
	case m.Name != "":
		return m.Name
	default:
		return m.Group
	}
}

// SpanName returns the deterministic span name: health.check.<id>.
func (m ComponentMeta) SpanName() string {
	return "health.check." + m.ComponentID()
}

// attributes returns the identifying attributes of m; group is omitted
// when empty.
func (m ComponentMeta) attributes(extra ...attribute.KeyValue) []attribute.KeyValue {
	attrs := append([]attribute.KeyValue{attribute.String("health.component", m.ComponentID())}, extra...)
	if m.Group != "" {
		attrs = append(attrs, attribute.String("health.group", m.Group))
	}
	return attrs
}
