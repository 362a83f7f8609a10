package auth

import (
	"slices"
	"time"
)

// AuthMethod names the scheme that produced an Identity.
type AuthMethod string

const (
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAPIKey    AuthMethod = "api_key"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity is the caller behind a health request. Roles decide whether the
// caller may see component details.
type Identity struct {
	Principal string
	Roles     []string
	Method    AuthMethod

	// Claims carries the token claims, or {"key_id": ...} for API keys.
	Claims map[string]any

	// ExpiresAt is zero for credentials that never expire.
	ExpiresAt time.Time
	IssuedAt  time.Time
}

func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// HasAnyRole reports whether id holds one of roles. No roles matches
// every identity.
func (id *Identity) HasAnyRole(roles ...string) bool {
	return len(roles) == 0 || slices.ContainsFunc(roles, id.HasRole)
}

func (id *Identity) IsExpired() bool {
	return !id.ExpiresAt.IsZero() && time.Now().After(id.ExpiresAt)
}

// IsAnonymous reports whether id names nobody in particular.
func (id *Identity) IsAnonymous() bool {
	return id.Principal == "" || id.Method == AuthMethodAnonymous
}

// AnonymousIdentity is the identity given to unauthenticated callers.
func AnonymousIdentity() *Identity {
	return &Identity{Principal: "anonymous", Method: AuthMethodAnonymous, Claims: map[string]any{}}
}
