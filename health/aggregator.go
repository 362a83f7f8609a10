package health

import "fmt"

// StatusAggregator reduces a collection of statuses to one overall status.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Purity: the result must depend only on the input, not its order.
type StatusAggregator interface {
	AggregateStatus(statuses []Status) Status
}

// StatusAggregatorFunc is an adapter to allow ordinary functions to be used
// as StatusAggregators.
type StatusAggregatorFunc func(statuses []Status) Status

// AggregateStatus calls f(statuses).
func (f StatusAggregatorFunc) AggregateStatus(statuses []Status) Status {
	return f(statuses)
}

// SimpleStatusAggregator returns the canonical aggregator: the most severe
// status wins, and no statuses at all means UP.
func SimpleStatusAggregator() StatusAggregator {
	return StatusAggregatorFunc(func(statuses []Status) Status {
		return WorstOf(statuses...)
	})
}

// orderedAggregator picks the first status of its order that is present.
type orderedAggregator struct {
	rank map[Status]int
}

// NewOrderedStatusAggregator returns an aggregator using a custom severity
// order, most severe first. Statuses missing from order rank below every
// listed status, in their default severity order.
func NewOrderedStatusAggregator(order ...Status) (StatusAggregator, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: order is empty", ErrInvalidOrder)
	}

	rank := make(map[Status]int, len(order))
	for i, s := range order {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOrder, s)
		}
		if _, dup := rank[s]; dup {
			return nil, fmt.Errorf("%w: duplicate %v", ErrInvalidOrder, s)
		}
		rank[s] = len(order) - i + len(Statuses)
	}
	for _, s := range Statuses {
		if _, ok := rank[s]; !ok {
			rank[s] = s.Severity()
		}
	}

	return &orderedAggregator{rank: rank}, nil
}

func (a *orderedAggregator) AggregateStatus(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusUp
	}

	best := statuses[0]
	for _, s := range statuses {
		if !s.Valid() {
			return StatusDown
		}
		if a.rank[s] > a.rank[best] {
			best = s
		}
	}
	return best
}
