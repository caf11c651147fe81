package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"realtime-polling-backend/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient 创建并验证Redis连接
// 连接失败时返回错误，由调用方决定降级策略
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	options := &redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 3 * time.Second,
		ReadTimeout: 3 * time.Second,
		PoolSize:    10,
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis连接失败: %v", err)
	}

	log.Printf("Redis连接初始化成功, 地址: %s", cfg.RedisAddr)
	return client, nil
}

// CloseRedis 关闭Redis连接
func CloseRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Printf("关闭Redis连接失败: %v", err)
		return
	}
	log.Println("Redis连接已关闭")
}
