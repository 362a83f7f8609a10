package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// MaxKeyLength bounds the length of a cache key in bytes.
const MaxKeyLength = 512

var (
	ErrNilCache   = errors.New("cache: cache is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Cache holds recent health snapshots so that expensive contributors are
// not probed on every request.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a miss is reported by Get as ok == false, never as an error.
type Cache interface {
	Get(ctx context.Context, key string) (h health.Health, ok bool)

	// Set keeps h for ttl. A non-positive ttl is a no-op.
	Set(ctx context.Context, key string, h health.Health, ttl time.Duration) error

	// Delete drops key. A missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ValidateKey rejects blank keys, keys spanning lines and keys longer than
// MaxKeyLength.
func ValidateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "", strings.ContainsAny(key, "\r\n"):
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	case len(key) > MaxKeyLength:
		return fmt.Errorf("%w: %d bytes", ErrKeyTooLong, len(key))
	}
	return nil
}
