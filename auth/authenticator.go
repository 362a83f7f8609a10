package auth

import (
	"context"
	"net/http"
)

// Authenticator turns the credentials on a health request into an Identity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Authenticate should honor cancellation.
// - Errors: a rejected credential is a result with Authenticated=false and a
//   nil error; a non-nil error means the authenticator itself failed.
type Authenticator interface {
	// Name identifies the authenticator in logs.
	Name() string

	// Supports reports whether req carries a credential of this kind.
	Supports(ctx context.Context, req *AuthRequest) bool

	// Authenticate checks the credential on req.
	Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// AuthRequest carries the credentials of one health request.
type AuthRequest struct {
	// Headers holds the request headers (Authorization, X-API-Key).
	Headers http.Header

	// Resource is the requested path, e.g. "/health/liveness".
	Resource string
}

// GetHeader returns the first value of key, matching both the canonical and
// the verbatim form, or "".
func (r *AuthRequest) GetHeader(key string) string {
	if r.Headers == nil {
		return ""
	}
	if v := r.Headers.Get(key); v != "" {
		return v
	}
	if values := r.Headers[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// RequestFromHTTP builds an AuthRequest from r.
func RequestFromHTTP(r *http.Request) *AuthRequest {
	return &AuthRequest{Headers: r.Header, Resource: r.URL.Path}
}

// AuthResult is the outcome of one authentication attempt.
type AuthResult struct {
	Authenticated bool

	// Identity is set when Authenticated is true.
	Identity *Identity

	// Error explains a rejection.
	Error error

	// Method names the credential kind that was checked.
	Method string
}

// AuthSuccess returns an authenticated result for identity.
func AuthSuccess(identity *Identity) *AuthResult {
	return &AuthResult{Authenticated: true, Identity: identity, Method: string(identity.Method)}
}

// AuthFailure returns a rejection caused by err.
func AuthFailure(err error, method string) *AuthResult {
	return &AuthResult{Error: err, Method: method}
}

// AuthenticatorFunc adapts a pair of functions to Authenticator.
type AuthenticatorFunc struct {
	name     string
	supports func(ctx context.Context, req *AuthRequest) bool
	auth     func(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// NewAuthenticatorFunc returns an Authenticator named name. A nil supports
// accepts every request.
func NewAuthenticatorFunc(
	name string,
	supports func(ctx context.Context, req *AuthRequest) bool,
	auth func(ctx context.Context, req *AuthRequest) (*AuthResult, error),
) *AuthenticatorFunc {
	return &AuthenticatorFunc{name: name, supports: supports, auth: auth}
}

func (f *AuthenticatorFunc) Name() string { return f.name }

func (f *AuthenticatorFunc) Supports(ctx context.Context, req *AuthRequest) bool {
	return f.supports == nil || f.supports(ctx, req)
}

func (f *AuthenticatorFunc) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	return f.auth(ctx, req)
}
