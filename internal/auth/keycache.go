package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"sync"
	"time"
)

// FetchFunc retrieves the current signing keys, keyed by kid.
type FetchFunc func(ctx context.Context) (map[string]*rsa.PublicKey, error)

const defaultKeyTTL = 15 * time.Minute

// KeyCache holds JWKS signing keys with a TTL. An unknown kid triggers one
// forced refresh before failing, which covers key rotation at the issuer.
type KeyCache struct {
	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	ttl       time.Duration
	fetch     FetchFunc
}

func NewKeyCache(fetch FetchFunc, ttl time.Duration) *KeyCache {
	if ttl <= 0 {
		ttl = defaultKeyTTL
	}
	return &KeyCache{ttl: ttl, fetch: fetch}
}

// Key returns the public key for kid, refreshing the cache when it is stale
// or the kid is unknown.
func (c *KeyCache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.keys == nil || time.Since(c.fetchedAt) > c.ttl {
		if err := c.refreshLocked(ctx); err != nil {
			return nil, err
		}
	}

	if key, ok := c.keys[kid]; ok {
		return key, nil
	}

	// The kid may belong to a freshly rotated key.
	if err := c.refreshLocked(ctx); err != nil {
		return nil, err
	}
	if key, ok := c.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("signing key %q not found", kid)
}

// Invalidate drops the cached keys; the next Key call refetches.
func (c *KeyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = nil
}

func (c *KeyCache) refreshLocked(ctx context.Context) error {
	keys, err := c.fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch signing keys: %w", err)
	}
	c.keys = keys
	c.fetchedAt = time.Now()
	return nil
}
