package health

import (
	"fmt"
	"net/http"
)

// HTTPCodeStatusMapper maps a status to an HTTP response code.
// Implementations must be total over every valid status.
type HTTPCodeStatusMapper interface {
	MapStatusToCode(status Status) int
}

// HTTPCodeStatusMapperFunc is an adapter to allow ordinary functions to be
// used as HTTPCodeStatusMappers.
type HTTPCodeStatusMapperFunc func(status Status) int

// MapStatusToCode calls f(status).
func (f HTTPCodeStatusMapperFunc) MapStatusToCode(status Status) int {
	return f(status)
}

// SimpleHTTPCodeStatusMapper returns the canonical mapping:
// UP and UNKNOWN map to 200, OUT_OF_SERVICE and DOWN to 503.
func SimpleHTTPCodeStatusMapper() HTTPCodeStatusMapper {
	return HTTPCodeStatusMapperFunc(simpleCode)
}

func simpleCode(status Status) int {
	switch status {
	case StatusUp, StatusUnknown:
		return http.StatusOK
	default:
		return http.StatusServiceUnavailable
	}
}

// NewMappingHTTPCodeStatusMapper returns a mapper that applies overrides on
// top of the simple mapping, so statuses without an override keep their
// canonical code.
func NewMappingHTTPCodeStatusMapper(overrides map[Status]int) (HTTPCodeStatusMapper, error) {
	codes := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		codes[s] = simpleCode(s)
	}
	for s, code := range overrides {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStatus, s)
		}
		if !validCode(code) {
			return nil, fmt.Errorf("%w: %d for %v", ErrInvalidCode, code, s)
		}
		codes[s] = code
	}

	return HTTPCodeStatusMapperFunc(func(status Status) int {
		if code, ok := codes[status]; ok {
			return code
		}
		return http.StatusServiceUnavailable
	}), nil
}

// CheckMapper verifies that m yields a valid HTTP code for every status
// without panicking.
func CheckMapper(m HTTPCodeStatusMapper) (err error) {
	if m == nil {
		return fmt.Errorf("%w: mapper is nil", ErrMisconfiguredMapper)
	}

	var current Status
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic mapping %v: %v", ErrMisconfiguredMapper, current, r)
		}
	}()

	for _, current = range Statuses {
		if code := m.MapStatusToCode(current); !validCode(code) {
			return fmt.Errorf("%w: %v maps to %d", ErrMisconfiguredMapper, current, code)
		}
	}
	return nil
}

func validCode(code int) bool {
	return code >= 100 && code <= 599
}
