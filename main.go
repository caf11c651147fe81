package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realtime-polling-backend/cache"
	"realtime-polling-backend/config"
	"realtime-polling-backend/database"
	"realtime-polling-backend/handlers"
	"realtime-polling-backend/realtime"
	"realtime-polling-backend/repository"
	"realtime-polling-backend/routes"
	"realtime-polling-backend/service"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.Load()

	// 初始化数据库连接（选票存储）
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}

	// 初始化Redis连接（会话存储和限流器）
	// Redis不可用时降级为内存会话存储，仅用于开发环境
	var redisClient *redis.Client
	var participants repository.ParticipantRepository

	redisClient, err = cache.NewRedisClient(cfg)
	if err != nil {
		log.Printf("警告: %v，会话存储降级为内存模式", err)
		participants = repository.NewMemoryParticipantRepository(cfg.SessionTTL)
	} else {
		participants = repository.NewRedisParticipantRepository(redisClient, cfg.SessionTTL)
	}

	ballots := repository.NewGormBallotRepository(db)

	// 构建服务
	authService := service.NewAuthService(participants)
	resultService := service.NewResultService(ballots)

	// 构建结果频道Hub和广播器
	hub := realtime.NewHub()
	broadcaster := realtime.NewBroadcaster(hub, resultService, cfg.BroadcastInterval)

	voteService := service.NewVoteService(participants, ballots, broadcaster)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	go broadcaster.Run(ctx)

	// 构建限流器
	var limiter *handlers.RequestRateLimiter
	if cfg.RateLimitEnabled {
		var window cache.RateLimiter
		if redisClient != nil {
			window = cache.NewSlidingWindowRateLimiter(redisClient, "global_api", cfg.RateLimitWindow, cfg.RateLimitMax)
		}
		perSecond := rate.Limit(float64(cfg.RateLimitMax) / cfg.RateLimitWindow.Seconds())
		local := rate.NewLimiter(perSecond, cfg.RateLimitMax)
		limiter = handlers.NewRequestRateLimiter(window, local)
		log.Printf("限流器已初始化: 窗口=%v, 上限=%d", cfg.RateLimitWindow, cfg.RateLimitMax)
	}

	// 设置路由
	router := routes.SetupRouter(cfg, routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Vote:        handlers.NewVoteHandler(voteService),
		Result:      handlers.NewResultHandler(resultService),
		Health:      handlers.NewHealthHandler(),
		WS:          handlers.NewWSHandler(hub, resultService),
		SSE:         handlers.NewSSEHandler(hub, resultService),
		AuthMW:      handlers.AuthMiddleware(authService),
		RateLimitMW: handlers.RateLimitMiddleware(limiter),
	})

	// 启动服务器
	srv := routes.StartServer(cfg, router)
	log.Println("服务器启动成功")

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("关闭服务器...")

	// 不接受新请求并等待现有请求完成
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务器强制关闭: %v", err)
	}

	// 停止广播器和Hub，关闭存储连接
	cancel()
	database.Close(db)
	cache.CloseRedis(redisClient)

	log.Println("服务器优雅关闭")
}
