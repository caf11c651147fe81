package realtime

import (
	"context"
	"log"
	"sync"
)

// Subscriber 代表结果频道的一个订阅者句柄
// WebSocket客户端和SSE连接都通过它接收推送
type Subscriber struct {
	send chan []byte
}

// Receive 返回接收推送消息的通道，Hub注销订阅者时关闭
func (s *Subscriber) Receive() <-chan []byte {
	return s.send
}

// Hub 维护结果频道的订阅者集合并向订阅者广播消息
// 加入和退出与投票状态无关，推送对当前订阅者至多一次，无重放
type Hub struct {
	// 已注册的订阅者
	subscribers map[*Subscriber]bool

	// 注册请求
	register chan *Subscriber

	// 注销请求
	unregister chan *Subscriber

	// 待广播的消息
	broadcast chan []byte

	// 互斥锁保护subscribers map
	mu sync.RWMutex
}

// NewHub 创建一个新的Hub
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]bool),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		broadcast:   make(chan []byte, 16),
	}
}

// Run 启动Hub消息处理循环，直到上下文取消
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			h.subscribers[sub] = true
			count := len(h.subscribers)
			h.mu.Unlock()
			log.Printf("订阅者已加入结果频道, 当前订阅数: %d", count)

		case sub := <-h.unregister:
			h.removeSubscriber(sub)

		case message := <-h.broadcast:
			h.fanOut(message)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Subscribe 注册一个新订阅者并返回其句柄
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{send: make(chan []byte, 256)}
	h.register <- sub
	return sub
}

// Unsubscribe 注销订阅者并关闭其接收通道
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.unregister <- sub
}

// Broadcast 向所有当前订阅者广播一条消息
func (h *Hub) Broadcast(message []byte) {
	h.broadcast <- message
}

// SubscriberCount 返回当前订阅者数量
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// fanOut 将消息发送给所有订阅者
func (h *Hub) fanOut(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		select {
		case sub.send <- message:
		default:
			// 订阅者发送缓冲区已满，注销该订阅者
			delete(h.subscribers, sub)
			close(sub.send)
		}
	}
	log.Printf("已广播结果更新到 %d 个订阅者", len(h.subscribers))
}

// removeSubscriber 注销订阅者
func (h *Hub) removeSubscriber(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.send)
		log.Printf("订阅者已退出结果频道, 当前订阅数: %d", len(h.subscribers))
	}
}

// closeAll 关闭所有订阅者
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		close(sub.send)
	}
}
