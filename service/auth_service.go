package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"realtime-polling-backend/model"
	"realtime-polling-backend/repository"

	"github.com/google/uuid"
)

var (
	// 业务错误定义
	ErrInvalidUsername = errors.New("invalid username")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrUnauthenticated = errors.New("invalid session token")
	ErrNotFound        = errors.New("participant not found")
	ErrInvalidOption   = errors.New("invalid option")
	ErrAlreadyVoted    = errors.New("already voted")
)

// 用户名长度限制
const (
	usernameMinLen = 2
	usernameMaxLen = 50
)

// AuthService 会话服务，处理登录和会话解析
type AuthService struct {
	participants repository.ParticipantRepository
}

// NewAuthService 创建会话服务
func NewAuthService(participants repository.ParticipantRepository) *AuthService {
	return &AuthService{participants: participants}
}

// Login 用用户名注册一个新会话
// 用户名去除首尾空白后长度需在2到50之间且未被占用
func (s *AuthService) Login(ctx context.Context, username string) (*model.Participant, error) {
	username = strings.TrimSpace(username)

	length := utf8.RuneCountInString(username)
	if length < usernameMinLen || length > usernameMaxLen {
		return nil, ErrInvalidUsername
	}

	p := &model.Participant{
		Username:     username,
		SessionToken: uuid.New().String(),
		HasVoted:     false,
		VotedFor:     nil,
		CreatedAt:    time.Now(),
	}

	if err := s.participants.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return p, nil
}

// Resolve 按会话令牌解析参与者，用于认证中间件
func (s *AuthService) Resolve(ctx context.Context, token string) (*model.Participant, error) {
	p, err := s.participants.GetBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return p, nil
}

// Profile 按会话令牌查询参与者信息
func (s *AuthService) Profile(ctx context.Context, token string) (*model.Participant, error) {
	p, err := s.participants.GetBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
