package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"realtime-polling-backend/model"

	"gorm.io/gorm"
)

// BallotRepository 定义选票数据访问接口
type BallotRepository interface {
	// Create 插入一张选票
	// 同一会话已有选票时返回ErrDuplicateBallot，该约束是防止重复投票的权威判定
	Create(ctx context.Context, ballot *model.Ballot) error

	// CountByOption 按选项分组统计选票数量
	CountByOption(ctx context.Context) (map[model.Option]int64, error)
}

// GormBallotRepository GORM实现的选票存储
type GormBallotRepository struct {
	db *gorm.DB
}

// NewGormBallotRepository 创建选票存储
func NewGormBallotRepository(db *gorm.DB) *GormBallotRepository {
	return &GormBallotRepository{db: db}
}

// Create 插入一张选票
func (r *GormBallotRepository) Create(ctx context.Context, ballot *model.Ballot) error {
	if err := r.db.WithContext(ctx).Create(ballot).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateBallot
		}
		return fmt.Errorf("写入选票失败: %w", err)
	}
	return nil
}

// optionCount 分组统计的扫描目标
type optionCount struct {
	Option model.Option
	Count  int64
}

// CountByOption 按选项分组统计选票数量
// 未出现的选项不在结果中，补零由聚合层负责
func (r *GormBallotRepository) CountByOption(ctx context.Context) (map[model.Option]int64, error) {
	var rows []optionCount

	err := r.db.WithContext(ctx).
		Model(&model.Ballot{}).
		Select("`option`, count(*) as count").
		Group("`option`").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("统计选票失败: %w", err)
	}

	counts := make(map[model.Option]int64, len(rows))
	for _, row := range rows {
		counts[row.Option] = row.Count
	}
	return counts, nil
}

// isDuplicateKeyError 判断错误是否为唯一约束冲突
// TranslateError开启时gorm会翻译，SQLite驱动部分版本不翻译，做字符串兜底
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate entry")
}
