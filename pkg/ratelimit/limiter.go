package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter 按 key（通常是接口路径）维护独立的令牌桶。
// 状态归属于实例本身，由调用方创建后注入客户端。
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
	burst    int
}

// NewKeyedLimiter interval 为同一 key 两次请求间的最小间隔，burst 为允许的突发数
func NewKeyedLimiter(interval time.Duration, burst int) *KeyedLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
		burst:    burst,
	}
}

func (k *KeyedLimiter) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.limiters[key]
	if !ok {
		limit := rate.Inf
		if k.interval > 0 {
			limit = rate.Every(k.interval)
		}
		l = rate.NewLimiter(limit, k.burst)
		k.limiters[key] = l
	}
	return l
}

// Wait 阻塞直到 key 对应的桶有可用令牌或 ctx 结束
func (k *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return k.get(key).Wait(ctx)
}

// Allow 非阻塞检查
func (k *KeyedLimiter) Allow(key string) bool {
	return k.get(key).Allow()
}

// Keys 当前已创建桶的数量
func (k *KeyedLimiter) Keys() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}
