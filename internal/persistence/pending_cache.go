package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/solicitud-service/internal/domain"
)

const (
	pendingCacheKey = "solicitudes:pending"
	pendingCacheTTL = 30 * time.Second
)

// PendingCache keeps the pending solicitud list in Redis. It is advisory:
// callers fall back to the database on a miss or error, and the conditional
// claim never consults it.
type PendingCache struct {
	client *redis.Client
}

// NewPendingCache builds a cache over the shared Redis client.
func NewPendingCache(r *Redis) *PendingCache {
	if r == nil || r.Client == nil {
		return nil
	}
	return &PendingCache{client: r.Client}
}

// Get returns the cached pending list, or false on miss or decode failure.
func (c *PendingCache) Get(ctx context.Context) ([]domain.Solicitud, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, pendingCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var list []domain.Solicitud
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	return list, true
}

// Set stores the pending list with a short TTL.
func (c *PendingCache) Set(ctx context.Context, list []domain.Solicitud) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, pendingCacheKey, raw, pendingCacheTTL).Err()
}

// Invalidate drops the cached list after a create or claim.
func (c *PendingCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, pendingCacheKey).Err()
}
