package service

import (
	"testing"
	"time"

	"realtime-polling-backend/model"
	"realtime-polling-backend/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestBallotRepo creates a ballot repository backed by an in-memory
// SQLite database. The connection pool is limited to a single connection
// so concurrent writers are serialized at the pool level and the unique
// index on session_token is the only arbiter of duplicates.
func newTestBallotRepo(t *testing.T) *repository.GormBallotRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.Ballot{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return repository.NewGormBallotRepository(db)
}

// newTestParticipantRepo creates an in-memory participant repository with
// the default 24h retention window.
func newTestParticipantRepo() *repository.MemoryParticipantRepository {
	return repository.NewMemoryParticipantRepository(24 * time.Hour)
}

// stubNotifier records broadcast triggers.
type stubNotifier struct {
	triggers chan struct{}
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{triggers: make(chan struct{}, 16)}
}

func (n *stubNotifier) Trigger() {
	select {
	case n.triggers <- struct{}{}:
	default:
	}
}

func (n *stubNotifier) count() int {
	return len(n.triggers)
}
