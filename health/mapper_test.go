package health

import (
	"errors"
	"net/http"
	"testing"
)

func TestSimpleHTTPCodeStatusMapper(t *testing.T) {
	m := SimpleHTTPCodeStatusMapper()
	tests := map[Status]int{
		StatusUp:           http.StatusOK,
		StatusUnknown:      http.StatusOK,
		StatusOutOfService: http.StatusServiceUnavailable,
		StatusDown:         http.StatusServiceUnavailable,
	}
	for s, want := range tests {
		if got := m.MapStatusToCode(s); got != want {
			t.Errorf("MapStatusToCode(%v) = %d, want %d", s, got, want)
		}
	}
	if err := CheckMapper(m); err != nil {
		t.Errorf("CheckMapper error = %v", err)
	}
}

func TestNewMappingHTTPCodeStatusMapper(t *testing.T) {
	m, err := NewMappingHTTPCodeStatusMapper(map[Status]int{
		StatusOutOfService: http.StatusOK,
		StatusDown:         http.StatusInternalServerError,
	})
	if err != nil {
		t.Fatalf("NewMappingHTTPCodeStatusMapper error = %v", err)
	}

	tests := map[Status]int{
		StatusUp:           http.StatusOK,
		StatusUnknown:      http.StatusOK,
		StatusOutOfService: http.StatusOK,
		StatusDown:         http.StatusInternalServerError,
	}
	for s, want := range tests {
		if got := m.MapStatusToCode(s); got != want {
			t.Errorf("MapStatusToCode(%v) = %d, want %d", s, got, want)
		}
	}
}

func TestNewMappingHTTPCodeStatusMapper_Invalid(t *testing.T) {
	if _, err := NewMappingHTTPCodeStatusMapper(map[Status]int{Status(0): 200}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("invalid status error = %v", err)
	}
	if _, err := NewMappingHTTPCodeStatusMapper(map[Status]int{StatusDown: 99}); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("invalid code error = %v", err)
	}
}

func TestCheckMapper(t *testing.T) {
	tests := []struct {
		name   string
		mapper HTTPCodeStatusMapper
	}{
		{"nil", nil},
		{"partial", HTTPCodeStatusMapperFunc(func(s Status) int {
			if s == StatusDown {
				return 0
			}
			return http.StatusOK
		})},
		{"panics", HTTPCodeStatusMapperFunc(func(s Status) int {
			if s == StatusOutOfService {
				panic("unmapped")
			}
			return http.StatusOK
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckMapper(tt.mapper); !errors.Is(err, ErrMisconfiguredMapper) {
				t.Errorf("CheckMapper error = %v, want ErrMisconfiguredMapper", err)
			}
		})
	}
}
