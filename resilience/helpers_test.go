package resilience

import (
	"context"
	"sync/atomic"

	"github.com/jonwraymond/healthops/health"
)

// scripted replays results in order and then repeats the last one.
type scripted struct {
	calls   atomic.Int32
	results []result
}

type result struct {
	h   health.Health
	err error
}

func script(results ...result) *scripted {
	return &scripted{results: results}
}

func (s *scripted) Health(context.Context) (health.Health, error) {
	n := int(s.calls.Add(1)) - 1
	if n >= len(s.results) {
		n = len(s.results) - 1
	}
	r := s.results[n]
	return r.h, r.err
}

func up() result { return result{h: health.Up()} }

func down() result { return result{h: health.Down()} }

func failed(err error) result { return result{err: err} }
