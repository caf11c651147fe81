package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	// Allow 判断请求是否允许通过
	Allow(ctx context.Context) (bool, error)
}

// RedisClient 限流器依赖的Redis操作子集
type RedisClient interface {
	Pipeline() redis.Pipeliner
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
}

// SlidingWindowRateLimiter 滑动窗口限流器
// 窗口大小和阈值来自配置，对应请求速率限制的时间窗和上限
type SlidingWindowRateLimiter struct {
	redisClient RedisClient
	key         string
	windowSize  time.Duration // 窗口大小
	limit       int           // 窗口内允许的最大请求数
}

// NewSlidingWindowRateLimiter 创建新的滑动窗口限流器
func NewSlidingWindowRateLimiter(client RedisClient, key string, windowSize time.Duration, limit int) *SlidingWindowRateLimiter {
	return &SlidingWindowRateLimiter{
		redisClient: client,
		key:         fmt.Sprintf("sliding_window:%s", key),
		windowSize:  windowSize,
		limit:       limit,
	}
}

// Allow 判断请求是否允许通过
func (l *SlidingWindowRateLimiter) Allow(ctx context.Context) (bool, error) {
	if l.redisClient == nil {
		return false, ErrRedisNotAvailable
	}

	now := time.Now().UnixNano() / int64(time.Millisecond)
	windowStart := now - int64(l.windowSize/time.Millisecond)
	requestID := uuid.New().String()

	// 使用有序集合记录请求
	pipe := l.redisClient.Pipeline()
	pipe.ZAdd(ctx, l.key, redis.Z{Score: float64(now), Member: requestID})
	pipe.ZRemRangeByScore(ctx, l.key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZCard(ctx, l.key)
	pipe.Expire(ctx, l.key, l.windowSize*2) // 设置过期时间，避免集合无限增长

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, err
	}

	// 获取当前窗口内的请求数量
	count := cmds[2].(*redis.IntCmd).Val()

	// 如果超过限制，移除当前请求
	if count > int64(l.limit) {
		l.redisClient.ZRem(ctx, l.key, requestID)
		return false, nil
	}

	return true, nil
}
