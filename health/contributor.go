package health

import "context"

// Contributor is anything that can report its health.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: implementations should honor cancellation/deadlines.
//   - Errors: a returned error means the check itself failed; the Registry
//     reports the component as DOWN with the error rendered into its details.
//     Reported unhealthy states (DOWN, OUT_OF_SERVICE) are returned as Health
//     values, not errors.
type Contributor interface {
	Health(ctx context.Context) (Health, error)
}

// ContributorFunc is an adapter to allow ordinary functions to be used as Contributors.
type ContributorFunc func(ctx context.Context) (Health, error)

// Health calls f(ctx).
func (f ContributorFunc) Health(ctx context.Context) (Health, error) {
	return f(ctx)
}

// PingFunc checks that a dependency is reachable, e.g. (*sql.DB).PingContext.
type PingFunc func(ctx context.Context) error

// PingContributor adapts a PingFunc into a Contributor. A nil error reports
// UP, anything else DOWN with the error as detail. opts are applied to both.
func PingContributor(ping PingFunc, opts ...Option) Contributor {
	return ContributorFunc(func(ctx context.Context) (Health, error) {
		if err := ping(ctx); err != nil {
			downOpts := make([]Option, 0, len(opts)+1)
			downOpts = append(downOpts, opts...)
			return Down(append(downOpts, WithError(err))...), nil
		}
		return Up(opts...), nil
	})
}

// Static returns a Contributor that always reports h.
func Static(h Health) Contributor {
	return ContributorFunc(func(context.Context) (Health, error) {
		return h, nil
	})
}
