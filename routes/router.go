package routes

import (
	"log"
	"net/http"
	"time"

	"realtime-polling-backend/config"
	"realtime-polling-backend/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server 是HTTP服务器的封装
type Server struct {
	*http.Server
}

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Auth   *handlers.AuthHandler
	Vote   *handlers.VoteHandler
	Result *handlers.ResultHandler
	Health *handlers.HealthHandler
	WS     *handlers.WSHandler
	SSE    *handlers.SSEHandler

	// 中间件
	AuthMW      gin.HandlerFunc
	RateLimitMW gin.HandlerFunc
}

// SetupRouter 设置和配置Gin路由
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	router := gin.Default()

	// 配置CORS中间件，允许的来源来自配置
	allowOrigins := []string{cfg.FrontendURL}
	if cfg.FrontendURL == "*" {
		allowOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.FrontendURL != "*",
		MaxAge:           12 * time.Hour,
	}))

	// 定义API路由
	api := router.Group("/api")
	{
		// 全局API限流中间件
		if h.RateLimitMW != nil {
			api.Use(h.RateLimitMW)
		}

		// 健康检查端点
		api.GET("/health", h.Health.HealthCheck)

		// 认证端点
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.GET("/profile", h.AuthMW, h.Auth.Profile)
		}

		// 投票端点
		votes := api.Group("/votes")
		{
			votes.POST("/cast", h.AuthMW, h.Vote.CastVote)
		}

		// 结果端点（拉取、SSE和WebSocket）
		api.GET("/results", h.Result.GetResults)
		api.GET("/results/live", h.SSE.HandleSSE)
		api.GET("/ws", h.WS.HandleWebSocket)
	}

	return router
}

// StartServer 启动HTTP服务器
func StartServer(cfg *config.Config, router *gin.Engine) *Server {
	addr := ":" + cfg.Port

	srv := &Server{
		&http.Server{
			Addr:    addr,
			Handler: router,
		},
	}

	// 在单独的goroutine中启动服务器
	go func() {
		log.Printf("服务器启动在 %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	return srv
}
