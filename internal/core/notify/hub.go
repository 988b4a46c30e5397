package notify

import (
	"sync"

	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"

	"go.uber.org/zap"
)

// Hub 依瀏覽器 session ID 分開的訊息佇列。
// 佇列在第一次發佈時建立，取出後即釋放，空 ID 代表 CLI 等單一使用者的呼叫者。
type Hub struct {
	cfg      config.NotifyConfig
	mu       sync.Mutex
	managers map[string]*Manager
	// 已釋放佇列的累計數量
	published int64
	dropped   int64
}

// Scope 單一 session 的訊息佇列
type Scope struct {
	hub *Hub
	id  string
}

// NewHub 創建訊息佇列集合
func NewHub(cfg config.NotifyConfig) *Hub {
	return &Hub{
		cfg:      cfg,
		managers: make(map[string]*Manager),
	}
}

// For 取得指定 session 的訊息佇列
func (h *Hub) For(id string) Scope {
	return Scope{hub: h, id: id}
}

// Success 新增成功訊息
func (s Scope) Success(msg string) {
	s.hub.publish(s.id, LevelSuccess, msg)
}

// Error 新增錯誤訊息
func (s Scope) Error(msg string) {
	s.hub.publish(s.id, LevelError, msg)
}

// Info 新增一般訊息
func (s Scope) Info(msg string) {
	s.hub.publish(s.id, LevelInfo, msg)
}

// Drain 取出此 session 的所有訊息並釋放佇列
func (s Scope) Drain() []Notification {
	return s.hub.drain(s.id)
}

func (h *Hub) publish(id string, level Level, msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.managers[id]
	if !ok {
		m = NewManager(h.cfg)
		h.managers[id] = m
	}
	m.Publish(level, msg)
}

func (h *Hub) drain(id string) []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.managers[id]
	if !ok {
		return nil
	}
	out := m.Drain()

	status := m.GetStatus()
	h.published += status.PublishedCount
	h.dropped += status.DroppedCount
	delete(h.managers, id)

	if len(out) > 0 {
		common.LogDebug("Notifications drained",
			zap.Int("count", len(out)),
			zap.Int("active_queues", len(h.managers)),
		)
	}
	return out
}

// GetStatus 獲取所有佇列的合計狀態
func (h *Hub) GetStatus() *Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := &Status{
		MaxQueueSize:   h.cfg.MaxSize,
		PublishedCount: h.published,
		DroppedCount:   h.dropped,
	}
	for _, m := range h.managers {
		s := m.GetStatus()
		status.QueueLength += s.QueueLength
		status.PublishedCount += s.PublishedCount
		status.DroppedCount += s.DroppedCount
	}
	return status
}
