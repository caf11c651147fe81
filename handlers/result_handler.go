package handlers

import (
	"net/http"

	"realtime-polling-backend/model"
	"realtime-polling-backend/service"

	"github.com/gin-gonic/gin"
)

// ResultHandler 处理结果查询API请求
type ResultHandler struct {
	results *service.ResultService
}

// NewResultHandler 创建结果处理器
func NewResultHandler(results *service.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// GetResults 返回当前结果快照
func (h *ResultHandler) GetResults(c *gin.Context) {
	snapshot, err := h.results.ComputeResults(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Server error fetching results"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
