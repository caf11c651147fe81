package realtime

import (
	"context"
	"log"
	"time"

	"realtime-polling-backend/model"
)

// SnapshotSource 结果快照的计算来源
type SnapshotSource interface {
	ComputeResults(ctx context.Context) (*model.ResultSnapshot, error)
}

// Broadcaster 结果广播器
// 投票成功的显式信号和固定间隔的定时器都会触发一次重算加推送，
// 两者可能重叠，均为幂等读取加独立推送，后到的快照为准
type Broadcaster struct {
	hub      *Hub
	source   SnapshotSource
	interval time.Duration

	// 触发信号通道，容量为1，密集触发会被合并
	trigger chan struct{}
}

// NewBroadcaster 创建结果广播器
func NewBroadcaster(hub *Hub, source SnapshotSource, interval time.Duration) *Broadcaster {
	return &Broadcaster{
		hub:      hub,
		source:   source,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger 请求一次推送，非阻塞
// 信号已在队列中时直接合并，兜底定时器保证最终一致
func (b *Broadcaster) Trigger() {
	select {
	case b.trigger <- struct{}{}:
	default:
	}
}

// Run 启动广播循环，直到上下文取消
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.trigger:
			b.push(ctx)
		case <-ticker.C:
			b.push(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// push 重算结果快照并广播给所有订阅者
func (b *Broadcaster) push(ctx context.Context) {
	snapshot, err := b.source.ComputeResults(ctx)
	if err != nil {
		log.Printf("计算结果快照失败: %v", err)
		return
	}

	msg := &model.WSMessage{
		Type: model.WSTypeResultsUpdate,
		Data: snapshot,
	}

	payload, err := msg.ToJSON()
	if err != nil {
		log.Printf("序列化广播消息失败: %v", err)
		return
	}

	b.hub.Broadcast(payload)
}
