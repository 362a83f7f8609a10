package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*checkMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	found := findMetric(rm, name)
	if found == nil {
		return 0
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_TotalCounterIncrements(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCheck(context.Background(), ComponentMeta{Group: "primary", Name: "db"}, "UP", 100*time.Millisecond, nil)

	rm := collect(t, reader)
	if got := sumValue(t, rm, "health.check.total"); got != 1 {
		t.Errorf("health.check.total = %d, want 1", got)
	}
}

func TestMetrics_FailureCounter(t *testing.T) {
	tests := []struct {
		name   string
		status string
		err    error
		want   int64
	}{
		{"up", "UP", nil, 0},
		{"out of service", "OUT_OF_SERVICE", nil, 0},
		{"down", "DOWN", nil, 1},
		{"error", "DOWN", errors.New("dial tcp: refused"), 1},
		{"error with up status", "UP", errors.New("late failure"), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, reader := newTestMetrics(t)
			m.RecordCheck(context.Background(), ComponentMeta{Name: "db"}, tc.status, time.Millisecond, tc.err)

			rm := collect(t, reader)
			if got := sumValue(t, rm, "health.check.failures"); got != tc.want {
				t.Errorf("health.check.failures = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMetrics_DurationHistogramRecords(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCheck(context.Background(), ComponentMeta{Name: "db"}, "UP", 150*time.Millisecond, nil)

	rm := collect(t, reader)
	found := findMetric(rm, "health.check.duration_ms")
	if found == nil {
		t.Fatal("health.check.duration_ms metric not found")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("expected 1 data point, got %d", len(hist.DataPoints))
	}
	if hist.DataPoints[0].Sum != 150 {
		t.Errorf("histogram sum = %v, want 150", hist.DataPoints[0].Sum)
	}
}

func TestMetrics_AttributesApplied(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCheck(context.Background(), ComponentMeta{Group: "readiness", Name: "db"}, "DOWN", time.Millisecond, nil)

	rm := collect(t, reader)
	found := findMetric(rm, "health.check.total")
	if found == nil {
		t.Fatal("health.check.total metric not found")
	}
	sum := found.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 1 {
		t.Fatalf("expected 1 data point, got %d", len(sum.DataPoints))
	}

	attrs := sum.DataPoints[0].Attributes
	want := map[attribute.Key]string{
		"health.component": "readiness.db",
		"health.status":    "DOWN",
		"health.group":     "readiness",
	}
	for k, v := range want {
		got, ok := attrs.Value(k)
		if !ok {
			t.Errorf("attribute %s missing", k)
			continue
		}
		if got.AsString() != v {
			t.Errorf("attribute %s = %q, want %q", k, got.AsString(), v)
		}
	}
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader := newTestMetrics(t)

	const numGoroutines = 64
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			m.RecordCheck(context.Background(), ComponentMeta{Name: "db"}, "UP", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	rm := collect(t, reader)
	if got := sumValue(t, rm, "health.check.total"); got != numGoroutines {
		t.Errorf("health.check.total = %d, want %d", got, numGoroutines)
	}
}

func TestNewMetrics_ReturnsInterface(t *testing.T) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics error = %v", err)
	}
	m.RecordCheck(context.Background(), ComponentMeta{Name: "db"}, "UP", 0, nil)
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
