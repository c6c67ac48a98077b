package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

var _ Cache = (*MemoryCache)(nil)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-process Cache for single-instance deployments and
// local development. Entries are stored encoded, like in Redis, and carry
// their own deadline; the LRU's ttl only bounds how long dead entries linger.
type MemoryCache struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryCache creates a cache holding at most size sessions
func NewMemoryCache(size int, maxTTL time.Duration) *MemoryCache {
	if maxTTL <= 0 {
		maxTTL = DefaultTTL
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		now: time.Now,
	}
}

// Put stores the snapshot, replacing any previous session of the user
func (c *MemoryCache) Put(_ context.Context, userID string, snap *Snapshot, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	data, err := Encode(snap)
	if err != nil {
		return err
	}

	c.lru.Add(userID, memoryEntry{data: data, expiresAt: c.now().Add(ttl)})

	return nil
}

// Get returns the live session of the user
func (c *MemoryCache) Get(_ context.Context, userID string) (*Snapshot, error) {
	entry, ok := c.lru.Get(userID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !c.now().Before(entry.expiresAt) {
		c.lru.Remove(userID)
		return nil, ErrSessionNotFound
	}

	return Decode(entry.data)
}

// Delete removes the session of the user
func (c *MemoryCache) Delete(_ context.Context, userID string) error {
	c.lru.Remove(userID)
	return nil
}

// Ping always succeeds
func (c *MemoryCache) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored entries, including expired ones not yet reaped
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
