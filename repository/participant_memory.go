package repository

import (
	"context"
	"sync"
	"time"

	"realtime-polling-backend/model"
)

// memoryEntry 内存存储条目，带过期时间
type memoryEntry struct {
	participant model.Participant
	expiresAt   time.Time
}

// MemoryParticipantRepository 内存实现的参与者会话存储
// Redis不可用时的降级实现，也用于测试；过期在读取时惰性检查
type MemoryParticipantRepository struct {
	mu       sync.RWMutex
	byToken  map[string]*memoryEntry
	byName   map[string]string // username -> token
	ttl      time.Duration
}

// NewMemoryParticipantRepository 创建内存参与者存储
func NewMemoryParticipantRepository(ttl time.Duration) *MemoryParticipantRepository {
	return &MemoryParticipantRepository{
		byToken: make(map[string]*memoryEntry),
		byName:  make(map[string]string),
		ttl:     ttl,
	}
}

// Create 创建参与者记录
func (r *MemoryParticipantRepository) Create(ctx context.Context, p *model.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	if token, ok := r.byName[p.Username]; ok {
		if entry, ok := r.byToken[token]; ok && entry.expiresAt.After(now) {
			return ErrUsernameTaken
		}
		// 已过期的占用视为不存在
		delete(r.byToken, token)
		delete(r.byName, p.Username)
	}

	if _, ok := r.byToken[p.SessionToken]; ok {
		return ErrUsernameTaken
	}

	r.byToken[p.SessionToken] = &memoryEntry{
		participant: *p,
		expiresAt:   now.Add(r.ttl),
	}
	r.byName[p.Username] = p.SessionToken
	return nil
}

// GetBySessionToken 按会话令牌查找参与者
func (r *MemoryParticipantRepository) GetBySessionToken(ctx context.Context, token string) (*model.Participant, error) {
	r.mu.RLock()
	entry, ok := r.byToken[token]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrParticipantNotFound
	}

	if !entry.expiresAt.After(time.Now()) {
		r.mu.Lock()
		delete(r.byName, entry.participant.Username)
		delete(r.byToken, token)
		r.mu.Unlock()
		return nil, ErrParticipantNotFound
	}

	p := entry.participant
	return &p, nil
}

// MarkVoted 标记参与者已投票，不改变过期时间
func (r *MemoryParticipantRepository) MarkVoted(ctx context.Context, token string, option model.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byToken[token]
	if !ok || !entry.expiresAt.After(time.Now()) {
		return ErrParticipantNotFound
	}

	entry.participant.HasVoted = true
	entry.participant.VotedFor = &option
	return nil
}
