// Package cache provides the response cache used by the Storefront API client.
//
// A [Cache] stores opaque byte slices under string keys with an optional TTL.
// Several backends are available:
//   - [FileCache]: one JSON file per entry, for the CLI and single-host servers
//   - [RedisCache]: shared cache for multi-instance HTTP deployments
//   - [MongoCache]: shared cache for deployments that already run MongoDB
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so that every backend sees the same key space.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnknownBackend is returned by [Open] for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Cache is a byte-oriented key/value store with expiration.
//
// Get returns (nil, false, nil) on a miss; expired entries are misses.
// A TTL of 0 means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
// Clear returns the number of entries removed when the backend knows it.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Keyer generates cache keys.
type Keyer interface {
	// QueryKey returns the key for the response of a GraphQL operation with the
	// given variables.
	QueryKey(operation string, vars map[string]any) string
}

// DefaultKeyer hashes operation variables into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// QueryKey returns "query:<operation>:<sha256(vars)>".
func (DefaultKeyer) QueryKey(operation string, vars map[string]any) string {
	return hashKey("query:"+operation, vars)
}
