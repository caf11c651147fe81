package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"realtime-polling-backend/config"
	"realtime-polling-backend/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect 初始化数据库连接并迁移选票表
// 返回连接实例由调用方持有和传递，不使用全局变量
func Connect(cfg *config.Config) (*gorm.DB, error) {
	// 配置GORM日志
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	gormConfig := &gorm.Config{
		Logger: newLogger,
		// 将驱动层的唯一约束冲突翻译为gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	var db *gorm.DB
	var err error

	switch cfg.DBDriver {
	case "sqlite":
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		log.Println("使用SQLite数据库")
		db, err = gorm.Open(sqlite.Open(dsn), gormConfig)
	default:
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		}
		log.Println("使用MySQL数据库")
		db, err = gorm.Open(mysql.Open(dsn), gormConfig)
	}

	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %v", err)
	}

	// 自动迁移模型，建立session_token上的唯一索引
	if err := db.AutoMigrate(&model.Ballot{}); err != nil {
		return nil, fmt.Errorf("迁移模型失败: %v", err)
	}

	log.Println("数据库连接和迁移成功")
	return db, nil
}

// Close 关闭数据库连接
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("获取数据库连接失败: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("关闭数据库连接失败: %v", err)
		return
	}

	log.Println("数据库连接已关闭")
}
