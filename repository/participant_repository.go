package repository

import (
	"context"
	"errors"

	"realtime-polling-backend/model"
)

var (
	// ErrUsernameTaken 用户名已被占用错误
	ErrUsernameTaken = errors.New("username already taken")

	// ErrParticipantNotFound 参与者不存在错误
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrDuplicateBallot 会话重复投票错误，由存储层唯一约束产生
	ErrDuplicateBallot = errors.New("duplicate ballot for session")
)

// ParticipantRepository 定义参与者会话数据访问接口
// 写入方仅为投票和登录流程，记录在保留期后由存储层TTL过期
type ParticipantRepository interface {
	// Create 创建参与者，用户名或会话令牌已存在时返回ErrUsernameTaken
	Create(ctx context.Context, p *model.Participant) error

	// GetBySessionToken 按会话令牌查找参与者
	GetBySessionToken(ctx context.Context, token string) (*model.Participant, error)

	// MarkVoted 标记参与者已投票并记录所投选项，保留剩余TTL
	MarkVoted(ctx context.Context, token string, option model.Option) error
}
