package health

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusUp, "UP"},
		{StatusDown, "DOWN"},
		{StatusOutOfService, "OUT_OF_SERVICE"},
		{StatusUnknown, "UNKNOWN"},
		{Status(0), "Status(0)"},
		{Status(42), "Status(42)"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestStatus_ZeroValueInvalid(t *testing.T) {
	var s Status
	if s.Valid() {
		t.Fatal("zero Status should be invalid")
	}
	for _, s := range Statuses {
		if !s.Valid() {
			t.Errorf("%v should be valid", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"UP", StatusUp},
		{"up", StatusUp},
		{" Down ", StatusDown},
		{"out-of-service", StatusOutOfService},
		{"out of service", StatusOutOfService},
		{"OUT_OF_SERVICE", StatusOutOfService},
		{"unknown", StatusUnknown},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if err != nil {
			t.Errorf("ParseStatus(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseStatus("degraded"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("ParseStatus(degraded) error = %v, want ErrInvalidStatus", err)
	}
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(StatusOutOfService)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != `"OUT_OF_SERVICE"` {
		t.Errorf("Marshal = %s", data)
	}

	var s Status
	if err := json.Unmarshal([]byte(`"DOWN"`), &s); err != nil || s != StatusDown {
		t.Errorf("Unmarshal = %v, %v", s, err)
	}
	if err := json.Unmarshal([]byte(`3`), &s); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Unmarshal(3) error = %v", err)
	}
	if _, err := json.Marshal(Status(0)); err == nil {
		t.Error("marshaling the zero Status should fail")
	}
}

func TestStatus_Severity(t *testing.T) {
	order := []Status{StatusUp, StatusUnknown, StatusOutOfService, StatusDown}
	for i := 1; i < len(order); i++ {
		if order[i].Severity() <= order[i-1].Severity() {
			t.Errorf("%v should be more severe than %v", order[i], order[i-1])
		}
	}
}

func TestWorstOf(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusUp},
		{"all up", []Status{StatusUp, StatusUp}, StatusUp},
		{"unknown beats up", []Status{StatusUp, StatusUnknown}, StatusUnknown},
		{"oos beats unknown", []Status{StatusUnknown, StatusOutOfService}, StatusOutOfService},
		{"down beats all", []Status{StatusOutOfService, StatusDown, StatusUp}, StatusDown},
		{"invalid is down", []Status{StatusUp, Status(0)}, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorstOf(tt.statuses...); got != tt.want {
				t.Errorf("WorstOf(%v) = %v, want %v", tt.statuses, got, tt.want)
			}
		})
	}
}
