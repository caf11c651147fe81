package handlers

import (
	"net/http"
	"strings"

	"realtime-polling-backend/model"
	"realtime-polling-backend/service"

	"github.com/gin-gonic/gin"
)

// gin上下文键
const (
	ContextParticipantKey  = "participant"
	ContextSessionTokenKey = "sessionToken"
)

// AuthMiddleware 认证中间件
// 从Authorization头解析Bearer会话令牌并解析参与者，放入请求上下文
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		if token == "" {
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "No session token provided"})
			c.Abort()
			return
		}

		p, err := auth.Resolve(c.Request.Context(), token)
		if err != nil {
			if err == service.ErrUnauthenticated {
				c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Invalid session token"})
			} else {
				c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Authentication error"})
			}
			c.Abort()
			return
		}

		c.Set(ContextParticipantKey, p)
		c.Set(ContextSessionTokenKey, token)
		c.Next()
	}
}

// participantFromContext 从请求上下文取出参与者
func participantFromContext(c *gin.Context) (*model.Participant, bool) {
	value, ok := c.Get(ContextParticipantKey)
	if !ok {
		return nil, false
	}
	p, ok := value.(*model.Participant)
	return p, ok
}
