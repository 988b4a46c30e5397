// Package notify 保存短暫的成功／錯誤訊息，由下一個畫面取出顯示。
package notify

import (
	"sync"
	"sync/atomic"
	"time"

	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"

	"go.uber.org/zap"
)

// Level 訊息等級
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification 一則訊息
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Status 佇列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	MaxQueueSize   int   `json:"max_queue_size"`
	PublishedCount int64 `json:"published_count"`
	DroppedCount   int64 `json:"dropped_count"`
}

// Manager 訊息佇列
type Manager struct {
	maxSize   int
	queue     chan Notification
	mu        sync.Mutex
	published int64
	dropped   int64
}

// NewManager 創建訊息佇列
func NewManager(cfg config.NotifyConfig) *Manager {
	size := cfg.MaxSize
	if size <= 0 {
		size = 1
	}
	return &Manager{
		maxSize: size,
		queue:   make(chan Notification, size),
	}
}

// Success 新增成功訊息
func (m *Manager) Success(msg string) {
	m.Publish(LevelSuccess, msg)
}

// Error 新增錯誤訊息
func (m *Manager) Error(msg string) {
	m.Publish(LevelError, msg)
}

// Info 新增一般訊息
func (m *Manager) Info(msg string) {
	m.Publish(LevelInfo, msg)
}

// Publish 將訊息加入佇列，已滿時丟棄最舊的一則
func (m *Manager) Publish(level Level, msg string) {
	n := Notification{
		ID:        common.GenerateUUID(),
		Level:     level,
		Message:   msg,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		select {
		case m.queue <- n:
			atomic.AddInt64(&m.published, 1)
			common.LogDebug("Notification enqueued",
				zap.String("level", string(level)),
				zap.String("message", msg),
				zap.Int("queue_length", len(m.queue)),
			)
			return
		default:
		}

		select {
		case old := <-m.queue:
			atomic.AddInt64(&m.dropped, 1)
			common.LogWarn("通知佇列已滿，丟棄最舊訊息",
				zap.String("message", old.Message),
			)
		default:
		}
	}
}

// Drain 取出所有訊息，依加入順序
func (m *Manager) Drain() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Notification, 0, len(m.queue))
	for {
		select {
		case n := <-m.queue:
			out = append(out, n)
		default:
			return out
		}
	}
}

// GetStatus 獲取佇列狀態
func (m *Manager) GetStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		MaxQueueSize:   m.maxSize,
		PublishedCount: atomic.LoadInt64(&m.published),
		DroppedCount:   atomic.LoadInt64(&m.dropped),
	}
}
