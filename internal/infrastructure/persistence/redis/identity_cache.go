package redis

import (
	"context"
	"strings"
	"time"
)

// IdentityCache caches player name to UUID mappings so repeated lookups do
// not hit the Mojang API. Keys are lowercased since player names are
// case-insensitive.
type IdentityCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewIdentityCache creates a new IdentityCache.
func NewIdentityCache(cache *Cache) *IdentityCache {
	return &IdentityCache{
		cache: cache,
		ttl:   TTLIdentity,
	}
}

// GetUUID returns the cached UUID for a player name, or ErrCacheMiss.
func (c *IdentityCache) GetUUID(ctx context.Context, name string) (string, error) {
	return c.cache.GetString(ctx, identityKey(name))
}

// PutUUID stores a name to UUID mapping.
func (c *IdentityCache) PutUUID(ctx context.Context, name, uuid string) error {
	return c.cache.SetString(ctx, identityKey(name), uuid, c.ttl)
}

// Invalidate drops a cached mapping, used when a lookup turns out stale.
func (c *IdentityCache) Invalidate(ctx context.Context, name string) error {
	return c.cache.Delete(ctx, identityKey(name))
}

func identityKey(name string) string {
	return PrefixIdentity + strings.ToLower(name)
}

// BoardCache caches rendered guild leaderboard views keyed by guild. The
// view is whatever the presentation layer serializes; the cache never
// interprets it. Writers invalidate on board change.
type BoardCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewBoardCache creates a new BoardCache.
func NewBoardCache(cache *Cache) *BoardCache {
	return &BoardCache{
		cache: cache,
		ttl:   TTLBoardView,
	}
}

// Get deserializes the cached view for a guild into dest.
func (c *BoardCache) Get(ctx context.Context, guildID string, dest interface{}) error {
	return c.cache.Get(ctx, PrefixBoard+guildID, dest)
}

// Put stores the rendered view for a guild.
func (c *BoardCache) Put(ctx context.Context, guildID string, view interface{}) error {
	return c.cache.Set(ctx, PrefixBoard+guildID, view, c.ttl)
}

// Invalidate drops the cached view after a leaderboard update.
func (c *BoardCache) Invalidate(ctx context.Context, guildID string) error {
	return c.cache.Delete(ctx, PrefixBoard+guildID)
}
