// Package session holds the server-side session cache. The cache is the only
// record of which tokens are live: an entry keyed by user id exists from
// login until logout or TTL expiry.
package session

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is the absolute lifetime of a cached session
const DefaultTTL = 1800 * time.Second

var (
	// ErrSessionNotFound is returned by Get when no live session exists
	ErrSessionNotFound = errors.New("session not found")

	// ErrCacheUnavailable wraps transport failures of the backing store
	ErrCacheUnavailable = errors.New("session cache unavailable")

	// ErrCorruptSnapshot is returned when a cached value cannot be decoded
	ErrCorruptSnapshot = errors.New("corrupt session snapshot")
)

// Cache stores one session snapshot per user id.
//
// Put overwrites any existing entry and resets its expiry to ttl from now.
// Get returns ErrSessionNotFound for absent or expired entries. Delete is
// idempotent.
type Cache interface {
	Put(ctx context.Context, userID string, snap *Snapshot, ttl time.Duration) error
	Get(ctx context.Context, userID string) (*Snapshot, error)
	Delete(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}
