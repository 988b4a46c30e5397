package session

import (
	"context"
	"sync"
)

// MemoryStore 只存在於行程記憶體中的登入狀態，依瀏覽器 session ID 分開保存
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore 創建記憶體登入狀態
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.sessions[keyName(ctx, "")]
	if !ok {
		return nil, ErrNoSession
	}
	s := *stored
	return &s, nil
}

func (m *MemoryStore) Set(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.sessions[keyName(ctx, "")] = &cp
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, keyName(ctx, ""))
	return nil
}
