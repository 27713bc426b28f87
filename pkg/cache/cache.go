// Package cache stores derived artifacts such as rendered SVG and PNG
// exports so repeated renders of an unchanged diagram are served without
// repainting.
//
// Backends implement [Cache]: [FileCache] for the CLI, [MemoryCache] for
// the HTTP server and tests, and [NullCache] when caching is disabled.
// [Instrument] wraps any backend and reports hits, misses and writes to the
// hooks registered in package observability.
//
// Keys are built by a [Keyer] so every caller derives the same key for the
// same document content and render options.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
//
// Get reports a miss with ok == false and a nil error. A ttl <= 0 passed to
// Set stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// entry wraps cached data with its expiry.
type entry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newEntry(data []byte, ttl time.Duration, now time.Time) entry {
	e := entry{Data: data}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	return e
}

func (e entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
