package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer derives cache keys for a component and the inputs that distinguish
// its probes (tags, target URL and so on).
//
// Contract:
// - Determinism: equal inputs produce equal keys whatever the map order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(component string, input any) (string, error)
}

// digestBytes is how much of the SHA-256 digest ends up in a key.
const digestBytes = 8

// DefaultKeyer hashes the JSON encoding of the input.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key returns "health:<component>:<hash>", where hash is the first 16 hex
// characters of SHA-256 over the JSON of input. encoding/json emits map
// keys sorted, which makes the encoding canonical for maps at any depth.
func (k *DefaultKeyer) Key(component string, input any) (string, error) {
	encoded, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("cache: key input for %q: %w", component, err)
	}

	sum := sha256.Sum256(encoded)
	key := "health:" + component + ":" + hex.EncodeToString(sum[:digestBytes])
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

var _ Keyer = (*DefaultKeyer)(nil)
