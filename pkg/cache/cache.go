package cache

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultLocalTTL = 30 * time.Second // 本地缓存默认过期时间
	cleanupInterval = time.Minute
)

// TTLCache 本地缓存 + 可选 Redis 二级缓存，值统一为序列化后的字节
type TTLCache struct {
	tl     *zap.Logger
	local  *gocache.Cache
	redis  *redis.Client
	prefix string
}

// NewTTLCache rdb 为 nil 时只使用本地缓存
func NewTTLCache(tl *zap.Logger, rdb *redis.Client, prefix string) *TTLCache {
	return &TTLCache{
		tl:     tl,
		local:  gocache.New(DefaultLocalTTL, cleanupInterval),
		redis:  rdb,
		prefix: prefix,
	}
}

func (c *TTLCache) key(k string) string {
	return c.prefix + k
}

// Get 先查本地，再查 Redis，Redis 命中时回填本地
func (c *TTLCache) Get(ctx context.Context, k string) ([]byte, bool) {
	if v, found := c.local.Get(k); found {
		if b, ok := v.([]byte); ok {
			return b, true
		}
	}

	if c.redis == nil {
		return nil, false
	}

	b, err := c.redis.Get(ctx, c.key(k)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.tl.Debug("redis cache get failed", zap.String("key", k), zap.Error(err))
		}
		return nil, false
	}

	c.local.Set(k, b, c.backfillTTL(ctx, k))
	return b, true
}

// backfillTTL 本地副本不能比 Redis 中的 key 活得更久，最长 DefaultLocalTTL
func (c *TTLCache) backfillTTL(ctx context.Context, k string) time.Duration {
	ttl, err := c.redis.PTTL(ctx, c.key(k)).Result()
	if err != nil {
		c.tl.Debug("redis cache pttl failed", zap.String("key", k), zap.Error(err))
		return DefaultLocalTTL
	}
	if ttl <= 0 {
		// -1 表示 key 没有过期时间
		return DefaultLocalTTL
	}
	return min(ttl, DefaultLocalTTL)
}

// Set ttl <= 0 时不缓存
func (c *TTLCache) Set(ctx context.Context, k string, v []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.local.Set(k, v, ttl)

	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, c.key(k), v, ttl).Err(); err != nil {
		c.tl.Debug("redis cache set failed", zap.String("key", k), zap.Error(err))
	}
}

func (c *TTLCache) Delete(ctx context.Context, k string) {
	c.local.Delete(k)
	if c.redis != nil {
		c.redis.Del(ctx, c.key(k))
	}
}

// Flush 只清空本地缓存
func (c *TTLCache) Flush() {
	c.local.Flush()
}

func (c *TTLCache) Len() int {
	return c.local.ItemCount()
}
