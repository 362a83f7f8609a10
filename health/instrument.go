package health

import (
	"context"

	"github.com/jonwraymond/healthops/observe"
)

// Instrument wraps c so that every evaluation is traced, measured and
// logged through mw under meta.
func Instrument(meta observe.ComponentMeta, c Contributor, mw *observe.Middleware) Contributor {
	return ContributorFunc(func(ctx context.Context) (Health, error) {
		var h Health
		exec := mw.Wrap(func(ctx context.Context, _ observe.ComponentMeta) (string, error) {
			var err error
			h, err = c.Health(ctx)
			if err != nil {
				return StatusDown.String(), err
			}
			return h.Status().String(), nil
		})

		_, err := exec(ctx, meta)
		return h, err
	})
}
