package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fridgechef/internal/pkg/common"
)

// FileStore 以 JSON 檔保存登入狀態，內容為固定鍵的鍵值對；
// 帶有瀏覽器 session ID 時鍵名為 "<id>:token" 與 "<id>:user"
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore 創建檔案登入狀態
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path 回傳保存路徑
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(ctx context.Context) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return nil, err
	}

	token := values[keyName(ctx, TokenKey)]
	if token == "" {
		return nil, ErrNoSession
	}

	s := &Session{Token: token}
	if raw := values[keyName(ctx, UserKey)]; raw != "" {
		if err := common.ParseJSON(raw, &s.User); err != nil {
			return nil, fmt.Errorf("failed to parse stored user: %w", err)
		}
	}
	return s, nil
}

func (f *FileStore) Set(ctx context.Context, s *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, err := common.ToJSON(s.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	values, err := f.read()
	if err != nil {
		return err
	}
	values[keyName(ctx, TokenKey)] = s.Token
	values[keyName(ctx, UserKey)] = user
	return f.write(values)
}

func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	delete(values, keyName(ctx, TokenKey))
	delete(values, keyName(ctx, UserKey))
	return f.write(values)
}

// read 讀取全部鍵值，檔案不存在時回傳空集合
func (f *FileStore) read() (map[string]string, error) {
	values := map[string]string{}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}

	if err := common.ParseJSONBytes(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return values, nil
}

// write 先寫暫存檔再改名，避免留下半寫入的檔案
func (f *FileStore) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
