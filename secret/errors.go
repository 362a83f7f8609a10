package secret

import "errors"

// Sentinel errors for secret resolution.
var (
	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("secret: missing required environment variables")

	// ErrUnknownProvider indicates a secretref naming an unregistered provider.
	ErrUnknownProvider = errors.New("secret: provider is not registered")

	// ErrEmptySecret indicates a provider resolved a reference to "".
	ErrEmptySecret = errors.New("secret: resolved value is empty")

	// ErrInvalidRef indicates a malformed secretref.
	ErrInvalidRef = errors.New("secret: invalid reference")
)
