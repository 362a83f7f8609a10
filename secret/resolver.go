package secret

import (
	"context"
	"fmt"
	"strings"
)

const refPrefix = "secretref:"

// Resolver turns configuration values into the credentials they name.
//
// A value is first expanded with ExpandEnvStrict. If the result has the form
// "secretref:<provider>:<ref>", the named provider supplies the final value.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver returns a Resolver over providers. A strict resolver treats
// an empty resolved secret as an error.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers)), strict: strict}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// DefaultResolver is strict and knows the env and file providers.
func DefaultResolver() *Resolver {
	return NewResolver(true, EnvProvider{}, FileProvider{})
}

// Register installs p under p.Name(), replacing any previous provider of
// that name. A nil provider is ignored.
func (r *Resolver) Register(p Provider) {
	if p != nil {
		r.providers[p.Name()] = p
	}
}

func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	value, err := ExpandEnvStrict(value)
	if err != nil || !strings.HasPrefix(value, refPrefix) {
		return value, err
	}

	name, ref, ok := ParseSecretRef(value)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, value)
	}
	p := r.providers[name]
	if p == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	out, err := p.Resolve(ctx, ref)
	switch {
	case err != nil:
		return "", err
	case out == "" && r.strict:
		return "", fmt.Errorf("%w: %s", ErrEmptySecret, name)
	}
	return out, nil
}

// ResolveSlice resolves every element of values, stopping at the first
// failure.
func (r *Resolver) ResolveSlice(ctx context.Context, values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for i, v := range values {
		s, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("resolve [%d]: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseSecretRef splits "secretref:<provider>:<ref>". Both parts must be
// non-empty; ref may itself contain colons.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, ok := strings.CutPrefix(value, refPrefix)
	if !ok {
		return "", "", false
	}
	provider, ref, ok = strings.Cut(rest, ":")
	if !ok || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}
