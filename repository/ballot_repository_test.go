package repository

import (
	"context"
	"testing"

	"realtime-polling-backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBallotRepo(t *testing.T) *GormBallotRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Ballot{}))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return NewGormBallotRepository(db)
}

func TestBallotCreate(t *testing.T) {
	repo := newBallotRepo(t)

	err := repo.Create(context.Background(), &model.Ballot{
		Option:       model.OptionA,
		Username:     "alice",
		SessionToken: "token-1",
	})
	require.NoError(t, err)

	counts, err := repo.CountByOption(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.OptionA])
}

// The unique index on session_token is the authoritative duplicate-vote
// guard; a second insert for the same session is reported as
// ErrDuplicateBallot regardless of the chosen option.
func TestBallotCreate_DuplicateSession(t *testing.T) {
	repo := newBallotRepo(t)

	err := repo.Create(context.Background(), &model.Ballot{
		Option:       model.OptionA,
		Username:     "alice",
		SessionToken: "token-1",
	})
	require.NoError(t, err)

	err = repo.Create(context.Background(), &model.Ballot{
		Option:       model.OptionB,
		Username:     "alice",
		SessionToken: "token-1",
	})
	assert.ErrorIs(t, err, ErrDuplicateBallot)

	counts, err := repo.CountByOption(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.OptionA])
	assert.Equal(t, int64(0), counts[model.OptionB])
}

func TestBallotCountByOption(t *testing.T) {
	repo := newBallotRepo(t)

	ballots := []model.Ballot{
		{Option: model.OptionA, Username: "u1", SessionToken: "t1"},
		{Option: model.OptionA, Username: "u2", SessionToken: "t2"},
		{Option: model.OptionB, Username: "u3", SessionToken: "t3"},
	}
	for i := range ballots {
		require.NoError(t, repo.Create(context.Background(), &ballots[i]))
	}

	counts, err := repo.CountByOption(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), counts[model.OptionA])
	assert.Equal(t, int64(1), counts[model.OptionB])

	// Unvoted options are simply absent from the grouped counts
	_, ok := counts[model.OptionC]
	assert.False(t, ok)
}
