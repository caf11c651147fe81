package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"realtime-polling-backend/model"

	"github.com/redis/go-redis/v9"
)

// RedisParticipantRepository Redis实现的参与者会话存储
// 用户名唯一性由SETNX保证，会话过期由键TTL保证
type RedisParticipantRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisParticipantRepository 创建Redis参与者存储
func NewRedisParticipantRepository(client *redis.Client, ttl time.Duration) *RedisParticipantRepository {
	return &RedisParticipantRepository{
		client: client,
		ttl:    ttl,
	}
}

func tokenKey(token string) string {
	return "participant:token:" + token
}

func usernameKey(username string) string {
	return "participant:username:" + username
}

// Create 创建参与者记录
// 先用SETNX占用用户名键，再写入会话记录，两个键使用相同TTL
func (r *RedisParticipantRepository) Create(ctx context.Context, p *model.Participant) error {
	ok, err := r.client.SetNX(ctx, usernameKey(p.Username), p.SessionToken, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("占用用户名失败: %w", err)
	}
	if !ok {
		return ErrUsernameTaken
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("序列化参与者失败: %w", err)
	}

	ok, err = r.client.SetNX(ctx, tokenKey(p.SessionToken), data, r.ttl).Result()
	if err != nil {
		// 回滚用户名占用，避免留下无会话的用户名键
		r.client.Del(ctx, usernameKey(p.Username))
		return fmt.Errorf("写入会话记录失败: %w", err)
	}
	if !ok {
		r.client.Del(ctx, usernameKey(p.Username))
		return ErrUsernameTaken
	}

	return nil
}

// GetBySessionToken 按会话令牌查找参与者
func (r *RedisParticipantRepository) GetBySessionToken(ctx context.Context, token string) (*model.Participant, error) {
	data, err := r.client.Get(ctx, tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取会话记录失败: %w", err)
	}

	var p model.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("解析会话记录失败: %w", err)
	}
	return &p, nil
}

// MarkVoted 标记参与者已投票
// 使用KEEPTTL更新，过期时间不因投票而延长
func (r *RedisParticipantRepository) MarkVoted(ctx context.Context, token string, option model.Option) error {
	p, err := r.GetBySessionToken(ctx, token)
	if err != nil {
		return err
	}

	p.HasVoted = true
	p.VotedFor = &option

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("序列化参与者失败: %w", err)
	}

	if err := r.client.Set(ctx, tokenKey(token), data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("更新会话记录失败: %w", err)
	}
	return nil
}
