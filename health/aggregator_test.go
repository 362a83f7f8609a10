package health

import (
	"errors"
	"testing"
)

func TestSimpleStatusAggregator(t *testing.T) {
	agg := SimpleStatusAggregator()

	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"no contributors", nil, StatusUp},
		{"single up", []Status{StatusUp}, StatusUp},
		{"unknown only", []Status{StatusUnknown}, StatusUnknown},
		{"oos and down", []Status{StatusOutOfService, StatusDown}, StatusDown},
		{"up and oos", []Status{StatusUp, StatusOutOfService}, StatusOutOfService},
		{"up and unknown", []Status{StatusUnknown, StatusUp}, StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.AggregateStatus(tt.statuses); got != tt.want {
				t.Errorf("AggregateStatus(%v) = %v, want %v", tt.statuses, got, tt.want)
			}
		})
	}
}

func TestSimpleStatusAggregator_OrderIndependent(t *testing.T) {
	agg := SimpleStatusAggregator()
	perms := [][]Status{
		{StatusUp, StatusUnknown, StatusOutOfService, StatusDown},
		{StatusDown, StatusOutOfService, StatusUnknown, StatusUp},
		{StatusOutOfService, StatusUp, StatusDown, StatusUnknown},
	}
	for _, p := range perms {
		if got := agg.AggregateStatus(p); got != StatusDown {
			t.Errorf("AggregateStatus(%v) = %v, want DOWN", p, got)
		}
	}
}

func TestSimpleStatusAggregator_Monotonic(t *testing.T) {
	agg := SimpleStatusAggregator()
	base := []Status{StatusUp, StatusUnknown}
	before := agg.AggregateStatus(base)

	for _, s := range Statuses {
		after := agg.AggregateStatus(append(append([]Status(nil), base...), s))
		if after.Severity() < before.Severity() {
			t.Errorf("adding %v lowered severity from %v to %v", s, before, after)
		}
	}
}

func TestNewOrderedStatusAggregator(t *testing.T) {
	// UNKNOWN ranks above DOWN here.
	agg, err := NewOrderedStatusAggregator(StatusUnknown, StatusDown, StatusOutOfService, StatusUp)
	if err != nil {
		t.Fatalf("NewOrderedStatusAggregator error = %v", err)
	}

	if got := agg.AggregateStatus([]Status{StatusDown, StatusUnknown}); got != StatusUnknown {
		t.Errorf("got %v, want UNKNOWN", got)
	}
	if got := agg.AggregateStatus([]Status{StatusUp, StatusOutOfService}); got != StatusOutOfService {
		t.Errorf("got %v, want OUT_OF_SERVICE", got)
	}
	if got := agg.AggregateStatus(nil); got != StatusUp {
		t.Errorf("empty = %v, want UP", got)
	}
	if got := agg.AggregateStatus([]Status{StatusUp, Status(0)}); got != StatusDown {
		t.Errorf("invalid input = %v, want DOWN", got)
	}
}

func TestNewOrderedStatusAggregator_PartialOrder(t *testing.T) {
	agg, err := NewOrderedStatusAggregator(StatusUp)
	if err != nil {
		t.Fatalf("NewOrderedStatusAggregator error = %v", err)
	}

	if got := agg.AggregateStatus([]Status{StatusDown, StatusUp}); got != StatusUp {
		t.Errorf("listed status should win, got %v", got)
	}
	if got := agg.AggregateStatus([]Status{StatusUnknown, StatusDown}); got != StatusDown {
		t.Errorf("unlisted statuses keep default order, got %v", got)
	}
}

func TestNewOrderedStatusAggregator_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		order []Status
	}{
		{"empty", nil},
		{"invalid status", []Status{StatusUp, Status(0)}},
		{"duplicate", []Status{StatusDown, StatusDown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewOrderedStatusAggregator(tt.order...); !errors.Is(err, ErrInvalidOrder) {
				t.Errorf("error = %v, want ErrInvalidOrder", err)
			}
		})
	}
}
