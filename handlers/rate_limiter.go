package handlers

import (
	"log"
	"net/http"

	"realtime-polling-backend/cache"
	"realtime-polling-backend/model"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RequestRateLimiter 请求限流器
// 优先使用Redis滑动窗口，Redis不可用时降级为进程内令牌桶
type RequestRateLimiter struct {
	window cache.RateLimiter
	local  *rate.Limiter
}

// NewRequestRateLimiter 创建请求限流器
// window可以为nil，此时只使用本地令牌桶
func NewRequestRateLimiter(window cache.RateLimiter, local *rate.Limiter) *RequestRateLimiter {
	return &RequestRateLimiter{
		window: window,
		local:  local,
	}
}

// Allow 判断请求是否允许通过
func (l *RequestRateLimiter) Allow(c *gin.Context) bool {
	if l.window != nil {
		allowed, err := l.window.Allow(c.Request.Context())
		if err == nil {
			return allowed
		}
		log.Printf("Redis限流检查失败，降级为本地限流: %v", err)
	}

	if l.local != nil {
		return l.local.Allow()
	}
	return true
}

// RateLimitMiddleware 限流中间件
// limiter为nil时直接放行
func RateLimitMiddleware(limiter *RequestRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		if !limiter.Allow(c) {
			c.JSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
