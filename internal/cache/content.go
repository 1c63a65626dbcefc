// content.go caches published content items as JSON in Valkey so public
// slug lookups skip the database on repeat hits. The cache implements the
// lifecycle Observer contract: every committed mutation invalidates the
// affected slug, so readers never see a stale item for longer than one
// in-flight request.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/janvanerven/pawtal/internal/models"
)

// DefaultContentTTL bounds staleness even if an invalidation is lost.
const DefaultContentTTL = 5 * time.Minute

// ContentCache stores published content items in Valkey, keyed by kind and
// slug. All operations are best-effort: a cache failure is logged and the
// caller falls through to the database.
type ContentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewContentCache creates a content cache backed by the given Valkey client.
func NewContentCache(client *redis.Client, ttl time.Duration) *ContentCache {
	if ttl == 0 {
		ttl = DefaultContentTTL
	}
	return &ContentCache{client: client, ttl: ttl}
}

func contentKey(kind models.ContentKind, slug string) string {
	return fmt.Sprintf("content:%s:%s", kind, slug)
}

// Get retrieves a cached published item. Returns nil on miss.
func (c *ContentCache) Get(ctx context.Context, kind models.ContentKind, slug string) *models.Content {
	payload, err := c.client.Get(ctx, contentKey(kind, slug)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		slog.Warn("content cache get error", "kind", kind, "slug", slug, "error", err)
		return nil
	}

	var item models.Content
	if err := json.Unmarshal(payload, &item); err != nil {
		slog.Warn("content cache unmarshal error", "kind", kind, "slug", slug, "error", err)
		return nil
	}
	slog.Debug("content cache hit", "kind", kind, "slug", slug)
	return &item
}

// Set stores a published item with the configured TTL. Non-published items
// are never cached.
func (c *ContentCache) Set(ctx context.Context, item *models.Content) {
	if !item.IsPublished() {
		return
	}
	payload, err := json.Marshal(item)
	if err != nil {
		slog.Warn("content cache marshal error", "id", item.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, contentKey(item.Kind, item.Slug), payload, c.ttl).Err(); err != nil {
		slog.Warn("content cache set error", "kind", item.Kind, "slug", item.Slug, "error", err)
	}
}

// Invalidate removes a single item from the cache by kind and slug.
func (c *ContentCache) Invalidate(ctx context.Context, kind models.ContentKind, slug string) {
	if err := c.client.Del(ctx, contentKey(kind, slug)).Err(); err != nil {
		slog.Warn("content cache invalidate error", "kind", kind, "slug", slug, "error", err)
		return
	}
	slog.Debug("content cache invalidated", "kind", kind, "slug", slug)
}

// ContentChanged implements the lifecycle Observer contract: any committed
// mutation drops the cached entry for the item's slug.
func (c *ContentCache) ContentChanged(ctx context.Context, item *models.Content, action string) {
	c.Invalidate(ctx, item.Kind, item.Slug)
}
