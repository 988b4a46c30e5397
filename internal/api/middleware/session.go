package middleware

import (
	"context"
	"errors"
	"net/http"

	"fridgechef/internal/core/session"
	"fridgechef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionKey gin context 中保存登入狀態的鍵
const SessionKey = "session"

// 瀏覽器 session cookie
const (
	SessionCookie       = "fridgechef_session"
	sessionCookieMaxAge = 30 * 24 * 60 * 60
)

// BrowserSession 以 cookie 識別瀏覽器，並把 session ID 放入 request context。
// 沒有或無效的 cookie 會換發新的 ID。
func BrowserSession(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = common.GenerateUUID()
			common.LogDebug("換發瀏覽器 session",
				zap.String("path", c.Request.URL.Path),
			)
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, sessionCookieMaxAge, "/", "", secure, true)
		c.Request = c.Request.WithContext(session.WithID(c.Request.Context(), id))
		c.Next()
	}
}

// SessionReader 讀取目前有效的登入狀態
type SessionReader interface {
	CurrentSession(ctx context.Context) (*session.Session, error)
}

// LoadSession 讀取登入狀態放入 context，沒有登入也繼續
func LoadSession(reader SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := reader.CurrentSession(c.Request.Context())
		if err == nil {
			c.Set(SessionKey, s)
		} else if !errors.Is(err, session.ErrNoSession) {
			common.LogWarn("讀取登入狀態失敗", zap.Error(err))
		}
		c.Next()
	}
}

// RequireSession 沒有登入或 token 過期時導向登入頁
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c) == nil {
			common.LogDebug("未登入，導向登入頁",
				zap.String("path", c.Request.URL.Path),
			)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentSession 取得 LoadSession 放入的登入狀態
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
