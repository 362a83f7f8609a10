package health

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status represents the health state of a component.
//
// The zero value is not a valid status. A contributor that returns a Health
// without setting a status is treated as faulty by the Registry.
type Status int

const (
	statusInvalid Status = iota

	// StatusUnknown indicates the component could not determine its health.
	StatusUnknown
	// StatusUp indicates the component is functioning normally.
	StatusUp
	// StatusOutOfService indicates the component was deliberately taken out of service.
	StatusOutOfService
	// StatusDown indicates the component is not functioning.
	StatusDown
)

// Statuses lists every valid status, best first.
var Statuses = []Status{StatusUp, StatusUnknown, StatusOutOfService, StatusDown}

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusUp:
		return "UP"
	case StatusDown:
		return "DOWN"
	case StatusOutOfService:
		return "OUT_OF_SERVICE"
	case StatusUnknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s >= StatusUnknown && s <= StatusDown
}

// Severity returns the rank of s in the fixed order
// DOWN > OUT_OF_SERVICE > UNKNOWN > UP. It is only meaningful for aggregation.
// Invalid statuses rank with DOWN.
func (s Status) Severity() int {
	switch s {
	case StatusUp:
		return 0
	case StatusUnknown:
		return 1
	case StatusOutOfService:
		return 2
	default:
		return 3
	}
}

// ParseStatus parses the wire representation of a status.
// Matching ignores case and treats '-' and ' ' like '_'.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)

	switch norm {
	case "UP":
		return StatusUp, nil
	case "DOWN":
		return StatusDown, nil
	case "OUT_OF_SERVICE":
		return StatusOutOfService, nil
	case "UNKNOWN":
		return StatusUnknown, nil
	default:
		return statusInvalid, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalJSON encodes the status as a JSON string.
func (s Status) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON decodes a status from a JSON string.
func (s *Status) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, data)
	}
	return s.UnmarshalText([]byte(text))
}

// WorstOf returns the most severe status in statuses.
// An empty input is healthy: the result is StatusUp.
func WorstOf(statuses ...Status) Status {
	worst := StatusUp
	for _, s := range statuses {
		if !s.Valid() {
			return StatusDown
		}
		if s.Severity() > worst.Severity() {
			worst = s
		}
	}
	return worst
}
