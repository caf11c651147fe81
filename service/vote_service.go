package service

import (
	"context"
	"errors"
	"log"
	"time"

	"realtime-polling-backend/model"
	"realtime-polling-backend/repository"
)

// Notifier 投票成功后通知广播器的接口
type Notifier interface {
	// Trigger 触发一次结果重算和推送，不阻塞调用方
	Trigger()
}

// VoteService 投票服务
// 先检查hasVoted再写入选票，检查和写入之间存在竞态窗口，
// 并发下以选票表session_token唯一约束的拒绝为权威判定
type VoteService struct {
	participants repository.ParticipantRepository
	ballots      repository.BallotRepository
	notifier     Notifier
}

// NewVoteService 创建投票服务
func NewVoteService(participants repository.ParticipantRepository, ballots repository.BallotRepository, notifier Notifier) *VoteService {
	return &VoteService{
		participants: participants,
		ballots:      ballots,
		notifier:     notifier,
	}
}

// CastVote 为指定会话投出一票
func (s *VoteService) CastVote(ctx context.Context, sessionToken string, option string) (*model.VoteInfo, error) {
	// 验证选项
	opt := model.Option(option)
	if !opt.IsValid() {
		return nil, ErrInvalidOption
	}

	// 解析会话
	p, err := s.participants.GetBySessionToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	// 预检查，拦截绝大多数重复请求
	if p.HasVoted {
		return nil, ErrAlreadyVoted
	}

	// 先写选票，唯一约束冲突即重复投票
	ballot := &model.Ballot{
		Option:       opt,
		Username:     p.Username,
		SessionToken: sessionToken,
		CreatedAt:    time.Now(),
	}
	if err := s.ballots.Create(ctx, ballot); err != nil {
		if errors.Is(err, repository.ErrDuplicateBallot) {
			return nil, ErrAlreadyVoted
		}
		return nil, err
	}

	// 选票已落库，会话状态更新失败只记录日志
	if err := s.participants.MarkVoted(ctx, sessionToken, opt); err != nil {
		log.Printf("更新参与者投票状态失败 [会话: %s]: %v", sessionToken, err)
	}

	// 通知广播器推送最新结果
	if s.notifier != nil {
		s.notifier.Trigger()
	}

	return &model.VoteInfo{
		Option:   opt,
		Username: p.Username,
	}, nil
}
