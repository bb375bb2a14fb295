package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	appctx "bizledger/internal/core/context"
)

// APIKey is one named service credential. Hash is a bcrypt hash of the
// secret; the plaintext is never stored.
type APIKey struct {
	Name string
	Hash string
}

// APIKeySet verifies service API keys against their bcrypt hashes.
type APIKeySet struct {
	keys []APIKey
}

// NewAPIKeySet creates a key set from named bcrypt hashes.
func NewAPIKeySet(keys []APIKey) *APIKeySet {
	return &APIKeySet{keys: keys}
}

// ParseAPIKeySet parses "name:hash,name:hash" pairs, the format used in
// configuration.
func ParseAPIKeySet(raw string) (*APIKeySet, error) {
	if strings.TrimSpace(raw) == "" {
		return NewAPIKeySet(nil), nil
	}

	var keys []APIKey
	for _, pair := range strings.Split(raw, ",") {
		name, hash, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("malformed api key entry %q", pair)
		}
		keys = append(keys, APIKey{Name: name, Hash: hash})
	}
	return NewAPIKeySet(keys), nil
}

// HashAPIKey hashes a plaintext secret for storage in configuration.
func HashAPIKey(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}
	return string(hash), nil
}

// Verify checks the secret against every key and returns the service
// identity on match. The key name becomes the caller's user ID.
func (s *APIKeySet) Verify(secret string) (*appctx.UserContext, error) {
	for _, key := range s.keys {
		if bcrypt.CompareHashAndPassword([]byte(key.Hash), []byte(secret)) == nil {
			return &appctx.UserContext{
				UserID:    "svc:" + key.Name,
				IsService: true,
			}, nil
		}
	}
	return nil, fmt.Errorf("unknown api key")
}
