// Package cache stores rendered diagram artifacts keyed by content hash.
//
// Rendering DOT through Graphviz is the only expensive step in the export
// path, so the renderer and the HTTP service consult a [Cache] before doing
// it. Three backends are provided:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP service
//
// Keys come from a [Keyer] so deployments can namespace them:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "mapwright:")
//	key := keyer.ArtifactKey(cache.Hash([]byte(dot)), "svg")
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl <= 0 means the entry does not expire. Implementations are
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for a rendered artifact of the given
	// source hash and output format.
	ArtifactKey(sourceHash, format string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(sourceHash, format string) string {
	return artifactKey(sourceHash, format)
}
