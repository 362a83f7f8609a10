package auth

import (
	"context"
	"errors"
)

// CompositeAuthenticator offers a request to each member in order. The first
// member that authenticates it wins; members that do not support the request
// are skipped.
type CompositeAuthenticator struct {
	Authenticators []Authenticator
}

// NewCompositeAuthenticator combines auths in the given order.
func NewCompositeAuthenticator(auths ...Authenticator) *CompositeAuthenticator {
	return &CompositeAuthenticator{Authenticators: auths}
}

// Name returns "composite".
func (c *CompositeAuthenticator) Name() string {
	return "composite"
}

// Supports reports whether any member supports req.
func (c *CompositeAuthenticator) Supports(ctx context.Context, req *AuthRequest) bool {
	for _, member := range c.Authenticators {
		if member.Supports(ctx, req) {
			return true
		}
	}
	return false
}

// Authenticate returns the first successful result. An internal error from
// a member stops the walk. When every member rejects the request, the most
// specific rejection is returned: a bad or expired credential outranks a
// missing one.
func (c *CompositeAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	var rejected *AuthResult

	for _, member := range c.Authenticators {
		if !member.Supports(ctx, req) {
			continue
		}

		result, err := member.Authenticate(ctx, req)
		if err != nil {
			return nil, err
		}
		if result.Authenticated {
			return result, nil
		}
		if rejected == nil || errors.Is(rejected.Error, ErrMissingCredentials) {
			rejected = result
		}
	}

	if rejected == nil {
		return AuthFailure(ErrMissingCredentials, ""), nil
	}
	return rejected, nil
}

var _ Authenticator = (*CompositeAuthenticator)(nil)
