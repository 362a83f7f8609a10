package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryConfig configures the memory contributor.
type MemoryConfig struct {
	// WarningThreshold is the ratio of allocated to maximum memory that
	// reports UNKNOWN with a "warning" detail. Value should be between 0 and 1.
	// Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the ratio that reports DOWN.
	// Value should be between 0 and 1. Default: 0.95
	CriticalThreshold float64

	// MaxAlloc is the maximum expected allocation in bytes.
	// If zero, the memory obtained from the OS is used.
	MaxAlloc uint64
}

// MemoryContributor reports heap usage of the current process.
type MemoryContributor struct {
	config   MemoryConfig
	readStat func(*runtime.MemStats)
}

// NewMemoryContributor creates a memory contributor.
func NewMemoryContributor(config MemoryConfig) *MemoryContributor {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = config.WarningThreshold + 0.1
		if config.CriticalThreshold > 1 {
			config.CriticalThreshold = 0.99
		}
	}

	return &MemoryContributor{config: config, readStat: runtime.ReadMemStats}
}

// Health reports the current memory usage.
func (m *MemoryContributor) Health(ctx context.Context) (Health, error) {
	if err := ctx.Err(); err != nil {
		return Health{}, err
	}

	var stats runtime.MemStats
	m.readStat(&stats)

	maxAlloc := m.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}
	if maxAlloc == 0 {
		return Unknown(WithDetail("reason", "memory stats unavailable")), nil
	}

	usage := float64(stats.Alloc) / float64(maxAlloc)
	details := WithDetails(map[string]any{
		"alloc_bytes":   stats.Alloc,
		"max_alloc":     maxAlloc,
		"usage_percent": fmt.Sprintf("%.1f", usage*100),
		"heap_objects":  stats.HeapObjects,
		"num_gc":        stats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	})

	switch {
	case usage >= m.config.CriticalThreshold:
		return Down(details), nil
	case usage >= m.config.WarningThreshold:
		return Unknown(details, WithDetail("warning", "memory usage above warning threshold")), nil
	default:
		return Up(details), nil
	}
}

// Ensure MemoryContributor implements Contributor
var _ Contributor = (*MemoryContributor)(nil)
