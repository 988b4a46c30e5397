// Package session 保存目前登入使用者與 token。
//
// token 只透過 Store 讀寫；API client 每次授權呼叫都重新讀取，不在記憶體快取。
package session

import (
	"context"
	"errors"
	"time"

	"fridgechef/internal/pkg/common"

	"github.com/golang-jwt/jwt/v5"
)

// 固定的保存鍵
const (
	TokenKey = "token"
	UserKey  = "user"
)

// ctxKey 瀏覽器 session ID 的 context 鍵
type ctxKey struct{}

// WithID 將瀏覽器 session ID 放入 context，Store 依此區分不同瀏覽器的登入狀態
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IDFromContext 取出瀏覽器 session ID；CLI 等沒有 ID 的呼叫者 ok 為 false
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// keyName 依 context 中的 session ID 為保存鍵加上命名空間
func keyName(ctx context.Context, name string) string {
	if id, ok := IDFromContext(ctx); ok {
		return id + ":" + name
	}
	return name
}

// ErrNoSession 尚未登入
var ErrNoSession = errors.New("session: no active session")

// Session 登入狀態
type Session struct {
	Token string      `json:"token"`
	User  common.User `json:"user"`
}

// Store 登入狀態的讀寫介面
type Store interface {
	Get(ctx context.Context) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// ExpiresAt 讀取 token 的 exp 欄位，不驗證簽章（由後端驗證）。
// token 無法解析或沒有 exp 時 ok 為 false。
func (s *Session) ExpiresAt() (time.Time, bool) {
	if s == nil || s.Token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired token 已過期時回傳 true；無法判斷時視為未過期
func (s *Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}

// Active 讀取有效的登入狀態，沒有或已過期都回傳 ErrNoSession
func Active(ctx context.Context, store Store, now time.Time) (*Session, error) {
	s, err := store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if s.Token == "" || s.Expired(now) {
		return nil, ErrNoSession
	}
	return s, nil
}
