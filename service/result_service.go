package service

import (
	"context"
	"fmt"

	"realtime-polling-backend/model"
	"realtime-polling-backend/repository"
)

// ResultService 聚合服务，从全量选票计算结果快照
type ResultService struct {
	ballots repository.BallotRepository
}

// NewResultService 创建聚合服务
func NewResultService(ballots repository.BallotRepository) *ResultService {
	return &ResultService{ballots: ballots}
}

// ComputeResults 计算当前结果快照
// 三个选项全部补零后合并分组计数，零票选项始终出现在结果中；
// 只读无副作用，可并发重复调用
func (s *ResultService) ComputeResults(ctx context.Context) (*model.ResultSnapshot, error) {
	grouped, err := s.ballots.CountByOption(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[model.Option]int64, len(model.AllOptions))
	for _, opt := range model.AllOptions {
		counts[opt] = 0
	}

	var total int64
	for opt, count := range grouped {
		counts[opt] = count
		total += count
	}

	return &model.ResultSnapshot{
		OptionA:        counts[model.OptionA],
		OptionB:        counts[model.OptionB],
		OptionC:        counts[model.OptionC],
		Total:          total,
		OptionAPercent: formatPercent(counts[model.OptionA], total),
		OptionBPercent: formatPercent(counts[model.OptionB], total),
		OptionCPercent: formatPercent(counts[model.OptionC], total),
	}, nil
}

// formatPercent 计算保留一位小数的百分比字符串
// 各选项独立取整，相加不保证恰好100
func formatPercent(count, total int64) string {
	if total <= 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(count)/float64(total)*100)
}
