package handlers

import (
	"net/http"

	"realtime-polling-backend/model"

	"github.com/gin-gonic/gin"
)

// HealthHandler 处理健康检查请求
type HealthHandler struct{}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthCheck 健康检查端点
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:  "OK",
		Message: "Server is running",
	})
}
