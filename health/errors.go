package health

import (
	"errors"
	"fmt"
)

// Registration errors.
var (
	// ErrInvalidName indicates an empty contributor name.
	ErrInvalidName = errors.New("health: contributor name is required")

	// ErrNilContributor indicates a nil contributor was registered.
	ErrNilContributor = errors.New("health: contributor is nil")

	// ErrDuplicateContributor indicates the name is already registered.
	ErrDuplicateContributor = errors.New("health: contributor already registered")

	// ErrContributorNotFound indicates no contributor is registered under the name.
	ErrContributorNotFound = errors.New("health: contributor not found")

	// ErrCycle indicates a registry would contain itself.
	ErrCycle = errors.New("health: registry cannot contain itself")
)

// Configuration errors.
var (
	// ErrUnknownGroup indicates the endpoint has no group with the given name.
	ErrUnknownGroup = errors.New("health: unknown group")

	// ErrNoGroups indicates an endpoint was configured without groups.
	ErrNoGroups = errors.New("health: no groups configured")

	// ErrNilRegistry indicates an endpoint was configured without a registry.
	ErrNilRegistry = errors.New("health: registry is nil")

	// ErrMisconfiguredGroup indicates a group is missing a strategy.
	ErrMisconfiguredGroup = errors.New("health: group is misconfigured")

	// ErrMisconfiguredMapper indicates a mapper is not total over all statuses.
	ErrMisconfiguredMapper = errors.New("health: status mapper is not total")

	// ErrInvalidCode indicates an HTTP status code outside 100..599.
	ErrInvalidCode = errors.New("health: invalid http status code")

	// ErrInvalidOrder indicates an invalid status aggregation order.
	ErrInvalidOrder = errors.New("health: invalid status order")

	// ErrInvalidStatus indicates a value that is not a defined status.
	ErrInvalidStatus = errors.New("health: invalid status")
)

// Evaluation errors. These never escape Registry.Health; they are rendered
// into the "error" detail of the faulty component.
var (
	// ErrInvalidHealth indicates a contributor returned a Health without a valid status.
	ErrInvalidHealth = errors.New("health: contributor returned invalid health")
)

// PanicError wraps a value recovered from a panicking contributor.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("contributor panicked: %v", e.Value)
}

// Kind names the error for the "error" detail.
func (e *PanicError) Kind() string {
	return "PanicError"
}
