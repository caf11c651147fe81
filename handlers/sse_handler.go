package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"realtime-polling-backend/model"
	"realtime-polling-backend/realtime"

	"github.com/gin-gonic/gin"
)

// SSE心跳间隔
const sseHeartbeatInterval = 15 * time.Second

// SSEHandler 以SSE方式推送结果更新
// SSE是单向通道，连接建立即视为加入结果频道
type SSEHandler struct {
	hub     *realtime.Hub
	results realtime.SnapshotSource
}

// NewSSEHandler 创建SSE处理器
func NewSSEHandler(hub *realtime.Hub, results realtime.SnapshotSource) *SSEHandler {
	return &SSEHandler{
		hub:     hub,
		results: results,
	}
}

// HandleSSE 处理SSE连接请求
func (h *SSEHandler) HandleSSE(c *gin.Context) {
	// 设置SSE所需的HTTP头
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // 禁用Nginx缓冲

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Streaming unsupported"})
		return
	}

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	log.Printf("已注册SSE客户端, 客户端IP: %s", c.ClientIP())

	// 发送初始快照，新连接无需等待下一次广播
	if snapshot, err := h.results.ComputeResults(c.Request.Context()); err == nil {
		msg := &model.WSMessage{Type: model.WSTypeResultsUpdate, Data: snapshot}
		if payload, err := msg.ToJSON(); err == nil {
			fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
			flusher.Flush()
		}
	} else {
		log.Printf("发送SSE初始快照失败: %v", err)
	}

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	notify := c.Request.Context().Done()

	for {
		select {
		case <-notify:
			log.Printf("SSE客户端已断开连接, 客户端IP: %s", c.ClientIP())
			return

		case message, ok := <-sub.Receive():
			if !ok {
				// Hub侧关闭了订阅
				return
			}
			if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", message); err != nil {
				log.Printf("写入SSE数据失败: %v", err)
				return
			}
			flusher.Flush()

		case <-heartbeat.C:
			// 发送注释作为心跳
			if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
