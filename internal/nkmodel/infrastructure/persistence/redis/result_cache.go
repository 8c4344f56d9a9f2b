// Package redis 以输入摘要为键缓存模拟路径
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
)

const keyPrefix = "nkmodel:result:"

// jsonStore *cache.RedisCache 满足该接口
type jsonStore interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
}

// ResultRedisCache 结果缓存
type ResultRedisCache struct {
	store jsonStore
	ttl   time.Duration
}

// NewResultRedisCache 创建结果缓存，ttl <= 0 时为 10 分钟
func NewResultRedisCache(store jsonStore, ttl time.Duration) *ResultRedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ResultRedisCache{store: store, ttl: ttl}
}

var _ domain.ResultCache = (*ResultRedisCache)(nil)

func (c *ResultRedisCache) Get(ctx context.Context, fingerprint string) (*domain.PathResult, error) {
	var result domain.PathResult
	hit, err := c.store.GetJSON(ctx, c.key(fingerprint), &result)
	if err != nil {
		return nil, fmt.Errorf("failed to get result from redis: %w", err)
	}
	if !hit {
		return nil, nil
	}
	return &result, nil
}

func (c *ResultRedisCache) Set(ctx context.Context, fingerprint string, result *domain.PathResult) error {
	if result == nil {
		return nil
	}
	return c.store.SetJSON(ctx, c.key(fingerprint), result, c.ttl)
}

func (c *ResultRedisCache) key(fingerprint string) string {
	return keyPrefix + fingerprint
}
