package resilience

import (
	"context"
	"errors"

	"github.com/jonwraymond/healthops/health"
)

// ContributorPolicy decorates a health contributor with a resilience policy.
// Every pattern in this package implements it.
type ContributorPolicy interface {
	WrapContributor(c health.Contributor) health.Contributor
}

// probe adapts a contributor call to the op signature used by the patterns.
// When downIsFailure is set, a DOWN result is reported as ErrReportedDown so
// the pattern counts it; the Health itself is always kept in *h.
func probe(c health.Contributor, h *health.Health, downIsFailure bool) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := c.Health(ctx)
		*h = res
		if err != nil {
			return err
		}
		if downIsFailure && res.Status() == health.StatusDown {
			return ErrReportedDown
		}
		return nil
	}
}

// settle converts the outcome of a probed operation back into contributor
// results.
func settle(h health.Health, err error) (health.Health, error) {
	if err == nil || errors.Is(err, ErrReportedDown) {
		return h, nil
	}
	return health.Health{}, err
}

// skipped reports a probe that a policy refused to run.
func skipped(reason error) health.Health {
	return health.Unknown(health.WithError(reason))
}
