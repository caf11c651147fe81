package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 服务配置，全部来自环境变量
type Config struct {
	// HTTP服务配置
	Port        string
	FrontendURL string

	// 数据库配置（选票存储）
	DBDriver   string // mysql 或 sqlite
	DBDSN      string // 非空时直接使用，忽略下面的单项配置
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Redis配置（会话存储和限流器）
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// 限流配置
	RateLimitEnabled bool
	RateLimitWindow  time.Duration
	RateLimitMax     int

	// 广播定时器间隔，作为推送信号丢失时的兜底
	BroadcastInterval time.Duration

	// 会话保留时间，由存储层TTL实现过期
	SessionTTL time.Duration
}

// Load 加载配置，.env文件存在时先读取
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("已加载.env文件")
	}

	return &Config{
		Port:        getEnv("SERVER_PORT", "5000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBDSN:      getEnv("DB_DSN", ""),
		DBUser:     getEnv("DB_USER", "polluser"),
		DBPassword: getEnv("DB_PASSWORD", "pollpassword"),
		DBHost:     getEnv("DB_HOST", "mysql"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBName:     getEnv("DB_NAME", "pollingdb"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitEnabled: getEnv("ENABLE_RATE_LIMIT", "false") == "true",
		RateLimitWindow:  time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		RateLimitMax:     getEnvInt("RATE_LIMIT_MAX", 1000),

		BroadcastInterval: time.Duration(getEnvInt("BROADCAST_INTERVAL_SECONDS", 5)) * time.Second,

		SessionTTL: time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
	}
}

// getEnv 获取环境变量值或使用默认值
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt 获取整数环境变量值或使用默认值
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
