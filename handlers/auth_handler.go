package handlers

import (
	"errors"
	"net/http"

	"realtime-polling-backend/model"
	"realtime-polling-backend/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 处理登录和用户信息API请求
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login 用用户名注册新会话并返回会话令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Username must be at least 2 characters long"})
		return
	}

	p, err := h.auth.Login(c.Request.Context(), req.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Username must be at least 2 characters long"})
		case errors.Is(err, service.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Username already taken"})
		default:
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Server error during login"})
		}
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Message: "Login successful",
		User: model.UserInfo{
			Username:     p.Username,
			SessionToken: p.SessionToken,
			HasVoted:     p.HasVoted,
		},
	})
}

// Profile 返回当前会话的参与者信息
// 中间件已经解析过参与者，直接从上下文取，取不到时回退到存储查询
func (h *AuthHandler) Profile(c *gin.Context) {
	if p, ok := participantFromContext(c); ok {
		c.JSON(http.StatusOK, model.ProfileResponse{
			Username: p.Username,
			HasVoted: p.HasVoted,
			VotedFor: p.VotedFor,
		})
		return
	}

	token := c.GetString(ContextSessionTokenKey)

	p, err := h.auth.Profile(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, model.ProfileResponse{
		Username: p.Username,
		HasVoted: p.HasVoted,
		VotedFor: p.VotedFor,
	})
}
