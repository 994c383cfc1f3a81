// Package cache provides content-addressed caching for boards, rendered
// artifacts, and HTTP responses.
//
// The Cache interface abstracts the storage backend: FileCache for local CLI
// use, RedisCache for server deployments, NullCache to disable caching.
// Keys are produced by a Keyer so every consumer derives them the same way;
// ScopedKeyer adds a prefix for multi-tenant isolation.
package cache

import (
	"context"
	"time"
)

// TTLs per key class. Boards change often; rendered artifacts are
// content-addressed by board hash so they can live long.
const (
	// TTLBoard bounds staleness of read-through board caching.
	TTLBoard = 5 * time.Minute

	// TTLArtifact applies to rendered outputs (SVG, PNG, PDF, DOT).
	TTLArtifact = 24 * time.Hour

	// TTLHTTP applies to cached HTTP API responses.
	TTLHTTP = 15 * time.Minute
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// Implementations return (nil, false, nil) for a miss; errors are reserved
// for backend failures, not absent keys.
type Cache interface {
	// Get retrieves a value. hit is false when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// Keyer
// =============================================================================

// BoardKeyOpts parameterizes board cache keys.
type BoardKeyOpts struct {
	// Server is the remote API base URL, so boards from different servers
	// never collide. Empty for local stores.
	Server string
}

// ArtifactKeyOpts parameterizes rendered-artifact cache keys. Every field
// that changes the output bytes must be included here.
type ArtifactKeyOpts struct {
	Format  string
	Scale   float64
	Padding float64
	Title   string
	Indent  string
	Bullet  string
}

// Keyer generates stable cache keys. Implementations must be deterministic:
// the same inputs always produce the same key.
type Keyer interface {
	// HTTPKey generates a key for HTTP response caching.
	HTTPKey(namespace, key string) string

	// BoardKey generates a key for a map's board snapshot.
	BoardKey(mapID string, opts BoardKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact, keyed by the
	// hash of the serialized board it was rendered from.
	ArtifactKey(boardHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer: options are folded into a SHA-256
// hash so keys stay short and filesystem-safe regardless of input size.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// BoardKey generates a key for a map's board snapshot.
func (k *DefaultKeyer) BoardKey(mapID string, opts BoardKeyOpts) string {
	return hashKey("board", mapID, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(boardHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", boardHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
