package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fridgechef/internal/pkg/common"
)

// Deduplicator 記錄最近的表單送出，用來擋下重複點擊
type Deduplicator struct {
	window time.Duration
	// exempt 以這些後綴結尾的路徑不去重，例如連按兩次就是要切回原狀的分享開關
	exempt   []string
	mu       sync.RWMutex
	requests map[string]time.Time
	done     chan struct{}
	once     sync.Once
}

// NewDeduplicator 創建去重器並啟動清理協程；exempt 為不去重的路徑後綴
func NewDeduplicator(window time.Duration, exempt ...string) *Deduplicator {
	d := &Deduplicator{
		window:   window,
		exempt:   exempt,
		requests: make(map[string]time.Time),
		done:     make(chan struct{}),
	}
	go d.cleanup(10 * time.Minute)
	return d
}

func (d *Deduplicator) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			d.mu.Lock()
			for k, t := range d.requests {
				if now.Sub(t) > 10*d.window {
					delete(d.requests, k)
				}
			}
			d.mu.Unlock()
		case <-d.done:
			return
		}
	}
}

// Close 停止清理協程
func (d *Deduplicator) Close() {
	d.once.Do(func() { close(d.done) })
}

// seen 在 window 內看過同一指紋時回傳 true，否則記錄下來
func (d *Deduplicator) seen(fingerprint string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// Handler 請求去重中間件，只處理 POST；頁面請求導回來源頁
func (d *Deduplicator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || d.window <= 0 || d.exempted(c.Request.URL.Path) {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}
			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋；同一 IP 後的不同瀏覽器以 session cookie 區分
		fingerprint := c.ClientIP() + ":" + c.Request.Method + ":" + c.Request.URL.Path
		if sid, err := c.Cookie(SessionCookie); err == nil && sid != "" {
			fingerprint += ":" + sid
		}
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if d.seen(fingerprint, time.Now()) {
			common.LogWarn("重複送出已忽略",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			if wantsHTML(c) {
				c.Redirect(http.StatusSeeOther, backTo(c, "/"))
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrTooManyRequests.Response(false))
			return
		}

		c.Next()
	}
}

func (d *Deduplicator) exempted(path string) bool {
	for _, suffix := range d.exempt {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// wantsHTML 表單或瀏覽器請求
func wantsHTML(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		return true
	}
	ct := c.ContentType()
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// backTo 同站的 Referer 路徑，否則為 fallback
func backTo(c *gin.Context, fallback string) string {
	ref := c.Request.Referer()
	if ref == "" {
		return fallback
	}
	if i := strings.Index(ref, c.Request.Host); i >= 0 {
		if path := ref[i+len(c.Request.Host):]; strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") {
			return path
		}
	}
	return fallback
}
