package health

import (
	"net/http"
	"runtime"
	"time"

	"fridgechef/internal/core/notify"
	"fridgechef/internal/core/query"
	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// context 中注入的鍵
const (
	ConfigKey   = "config"
	CacheKey    = "query_cache"
	NotifierKey = "notifier"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status        string                 `json:"status"`
	Timestamp     time.Time              `json:"timestamp"`
	Version       string                 `json:"version"`
	Backend       string                 `json:"backend"`
	Runtime       map[string]interface{} `json:"runtime"`
	Cache         map[string]interface{} `json:"cache,omitempty"`
	Notifications *notify.Status         `json:"notifications,omitempty"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	// 獲取配置
	cfg, ok := c.MustGet(ConfigKey).(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, common.ErrInternalError.Response(false))
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Backend:   cfg.Backend.BaseURL,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if cache, ok := c.Get(CacheKey); ok {
		if qc, ok := cache.(*query.Client); ok && qc != nil {
			response.Cache = qc.GetStats()
		}
	}
	if n, ok := c.Get(NotifierKey); ok {
		if nm, ok := n.(*notify.Hub); ok && nm != nil {
			response.Notifications = nm.GetStatus()
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器
func ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
