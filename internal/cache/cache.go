// Package cache stores verification artifacts behind a small key/value interface.
// Backends are an in-process go-cache, SQLite and Redis; durable backends are
// fronted by the memory layer.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Kind namespaces cache keys by artifact
type Kind string

const (
	KindResult Kind = "result"
	KindSearch Kind = "search"
	KindScore  Kind = "score"
)

const keyPrefix = "verifier:"

// Key builds the cache key for an artifact kind and content hash
func Key(kind Kind, hash string) string {
	return keyPrefix + string(kind) + ":" + hash
}

// Hash returns the hex SHA-256 of the concatenated parts
func Hash(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashBytes returns the hex SHA-256 of raw bytes
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
