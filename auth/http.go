package auth

import (
	"net/http"

	"github.com/jonwraymond/healthops/observe"
)

// Middleware authenticates each request with a and, on success, attaches
// the identity to the request context. Unauthenticated requests pass
// through unchanged; the health handler decides what they may see.
func Middleware(a Authenticator, logger observe.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := authenticate(a, r, logger); id != nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestAuthorizer returns a check suitable for health.WithAuthorizer. A
// request is authorized when it carries a valid, unexpired identity holding
// at least one of roles (any identity when roles is empty). An identity
// already attached by Middleware is reused.
func RequestAuthorizer(a Authenticator, roles ...string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		id := IdentityFromContext(r.Context())
		if id == nil {
			id = authenticate(a, r, observe.NopLogger())
		}
		if id == nil || id.IsAnonymous() || id.IsExpired() {
			return false
		}
		return id.HasAnyRole(roles...)
	}
}

func authenticate(a Authenticator, r *http.Request, logger observe.Logger) *Identity {
	if a == nil {
		return nil
	}
	ctx := r.Context()
	req := RequestFromHTTP(r)
	if !a.Supports(ctx, req) {
		return nil
	}

	result, err := a.Authenticate(ctx, req)
	if err != nil {
		logger.Error(ctx, "authentication error",
			observe.Field{Key: "authenticator", Value: a.Name()},
			observe.Field{Key: "error", Value: err},
		)
		return nil
	}
	if !result.Authenticated {
		logger.Debug(ctx, "authentication rejected",
			observe.Field{Key: "method", Value: result.Method},
			observe.Field{Key: "error", Value: result.Error},
		)
		return nil
	}
	return result.Identity
}
