package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"realtime-polling-backend/model"
	"realtime-polling-backend/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时，收到pong后重置
	pongWait = 60 * time.Second

	// ping发送间隔，必须小于pongWait
	pingPeriod = 54 * time.Second

	// 消息大小限制
	maxMessageSize = 512
)

var newline = []byte{'\n'}

// 定义WebSocket升级器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许所有CORS请求，生产环境应限制
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler 处理结果频道的WebSocket连接
// 连接建立后客户端需要显式发送joinResults消息才开始接收推送
type WSHandler struct {
	hub     *realtime.Hub
	results realtime.SnapshotSource
}

// NewWSHandler 创建WebSocket处理器
func NewWSHandler(hub *realtime.Hub, results realtime.SnapshotSource) *WSHandler {
	return &WSHandler{
		hub:     hub,
		results: results,
	}
}

// HandleWebSocket 处理WebSocket连接
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	// 升级HTTP连接为WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("升级WebSocket连接失败: %v", err)
		return
	}

	client := &wsClient{
		hub:     h.hub,
		results: h.results,
		conn:    conn,
		send:    make(chan []byte, 256),
		done:    make(chan struct{}),
	}

	go client.writePump()
	client.readPump()
}

// wsClient 表示一个WebSocket客户端连接
type wsClient struct {
	// 结果频道Hub
	hub *realtime.Hub

	// 快照来源，加入频道时主动拉取一次当前结果
	results realtime.SnapshotSource

	// WebSocket连接
	conn *websocket.Conn

	// 发送消息的通道
	send chan []byte

	// 结果频道订阅句柄，未加入时为nil
	sub *realtime.Subscriber

	// 读取循环退出信号
	done chan struct{}
}

// readPump 客户端读取循环，处理加入、退出和心跳消息
func (c *wsClient) readPump() {
	defer func() {
		if c.sub != nil {
			c.hub.Unsubscribe(c.sub)
		}
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket读取错误: %v", err)
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case model.WSTypeJoinResults:
			c.handleJoin()
		case model.WSTypeLeaveResults:
			c.handleLeave()
		case model.WSTypePing:
			pong := &model.WSMessage{Type: model.WSTypePong}
			if payload, err := pong.ToJSON(); err == nil {
				c.enqueue(payload)
			}
		}
	}
}

// handleJoin 加入结果频道
// 订阅之后立即拉取一次当前快照发送，不等待下一次广播
func (c *wsClient) handleJoin() {
	if c.sub == nil {
		c.sub = c.hub.Subscribe()
		go c.forward(c.sub)
	}

	snapshot, err := c.results.ComputeResults(context.Background())
	if err != nil {
		log.Printf("加入时拉取结果快照失败: %v", err)
		return
	}

	msg := &model.WSMessage{
		Type: model.WSTypeResultsUpdate,
		Data: snapshot,
	}
	if payload, err := msg.ToJSON(); err == nil {
		c.enqueue(payload)
	}
}

// handleLeave 退出结果频道
func (c *wsClient) handleLeave() {
	if c.sub != nil {
		c.hub.Unsubscribe(c.sub)
		c.sub = nil
	}
}

// forward 将订阅通道的推送转发到客户端发送通道
// Hub关闭订阅通道后结束
func (c *wsClient) forward(sub *realtime.Subscriber) {
	for message := range sub.Receive() {
		c.enqueue(message)
	}
}

// enqueue 非阻塞入队，发送缓冲区满时丢弃
func (c *wsClient) enqueue(message []byte) {
	select {
	case c.send <- message:
	default:
	}
}

// writePump 客户端写入循环
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// 添加排队的消息
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
