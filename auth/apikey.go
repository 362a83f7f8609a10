package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// DefaultAPIKeyHeader is the header an API key is read from.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKeyConfig configures the API key authenticator.
type APIKeyConfig struct {
	// HeaderName carries the key. Default: DefaultAPIKeyHeader.
	HeaderName string
}

// APIKeyInfo describes one registered key. Only its SHA-256 hash is kept.
type APIKeyInfo struct {
	ID        string
	KeyHash   string
	Principal string
	Roles     []string

	// ExpiresAt is zero for keys that never expire.
	ExpiresAt time.Time
}

// APIKeyStore finds keys by hash. Lookup returns (nil, nil) for an unknown
// hash.
type APIKeyStore interface {
	Lookup(ctx context.Context, keyHash string) (*APIKeyInfo, error)
}

// APIKeyAuthenticator accepts requests that present a registered key.
type APIKeyAuthenticator struct {
	config APIKeyConfig
	store  APIKeyStore
	now    func() time.Time
}

// NewAPIKeyAuthenticator returns an authenticator backed by store.
func NewAPIKeyAuthenticator(config APIKeyConfig, store APIKeyStore) *APIKeyAuthenticator {
	if config.HeaderName == "" {
		config.HeaderName = DefaultAPIKeyHeader
	}
	return &APIKeyAuthenticator{config: config, store: store, now: time.Now}
}

// Name returns "api_key".
func (a *APIKeyAuthenticator) Name() string {
	return string(AuthMethodAPIKey)
}

// Supports reports whether the key header is present.
func (a *APIKeyAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return req.GetHeader(a.config.HeaderName) != ""
}

// Authenticate looks the presented key up by hash. The identity carries the
// key ID in the "key_id" claim.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	method := a.Name()
	key := strings.TrimSpace(req.GetHeader(a.config.HeaderName))
	if key == "" {
		return AuthFailure(ErrMissingCredentials, method), nil
	}

	info, err := a.store.Lookup(ctx, HashAPIKey(key))
	switch {
	case err != nil:
		return nil, err
	case info == nil:
		return AuthFailure(ErrInvalidCredentials, method), nil
	case !info.ExpiresAt.IsZero() && a.now().After(info.ExpiresAt):
		return AuthFailure(ErrTokenExpired, method), nil
	}

	return AuthSuccess(&Identity{
		Principal: info.Principal,
		Roles:     info.Roles,
		Method:    AuthMethodAPIKey,
		ExpiresAt: info.ExpiresAt,
		Claims:    map[string]any{"key_id": info.ID},
	}), nil
}

// HashAPIKey returns the hex SHA-256 digest under which key is stored.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// MemoryAPIKeyStore is an APIKeyStore held in memory.
type MemoryAPIKeyStore struct {
	mu     sync.RWMutex
	byHash map[string]*APIKeyInfo
}

// NewMemoryAPIKeyStore returns an empty store.
func NewMemoryAPIKeyStore() *MemoryAPIKeyStore {
	return &MemoryAPIKeyStore{byHash: make(map[string]*APIKeyInfo)}
}

func (s *MemoryAPIKeyStore) Lookup(_ context.Context, keyHash string) (*APIKeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byHash[keyHash], nil
}

// Add stores info under its KeyHash, replacing any previous entry.
func (s *MemoryAPIKeyStore) Add(info *APIKeyInfo) error {
	if info == nil || info.KeyHash == "" {
		return ErrInvalidCredentials
	}
	s.mu.Lock()
	s.byHash[info.KeyHash] = info
	s.mu.Unlock()
	return nil
}

// AddKey hashes key and registers it for principal with roles.
func (s *MemoryAPIKeyStore) AddKey(id, key, principal string, roles ...string) error {
	if key == "" {
		return ErrMissingCredentials
	}
	return s.Add(&APIKeyInfo{ID: id, KeyHash: HashAPIKey(key), Principal: principal, Roles: roles})
}

// Remove deletes the key stored under keyHash.
func (s *MemoryAPIKeyStore) Remove(keyHash string) {
	s.mu.Lock()
	delete(s.byHash, keyHash)
	s.mu.Unlock()
}

// Len returns the number of stored keys.
func (s *MemoryAPIKeyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byHash)
}

var (
	_ Authenticator = (*APIKeyAuthenticator)(nil)
	_ APIKeyStore   = (*MemoryAPIKeyStore)(nil)
)
