// Package query 是以鍵為單位的讀取快取：過期判定、前綴失效、重試、
// 同鍵請求合併、容量上限與定期清理。
package query

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrDisabled 查詢停用時不發出請求
var ErrDisabled = errors.New("query: disabled")

// Query 一個可快取的查詢
type Query[T any] struct {
	Key Key
	Fn  func(ctx context.Context) (T, error)
	// Disabled 為 true 時 Fetch 直接回傳 ErrDisabled
	Disabled bool
	// NoRetry 失敗時不重試
	NoRetry bool
}

// Client 查詢快取
type Client struct {
	config config.CacheConfig
	mu     sync.RWMutex
	store  map[string]*entry
	group  singleflight.Group
	stats  cacheStats
	// version 每次失效或清空時遞增，進行中的請求據此判斷結果是否已過時
	version uint64

	now       func() time.Time
	done      chan struct{}
	closeOnce sync.Once
}

// entry 快取條目
type entry struct {
	key         Key
	value       interface{}
	updatedAt   time.Time
	lastAccess  time.Time
	accessCount int
	stale       bool
}

// cacheStats 快取統計
type cacheStats struct {
	hits          int64
	misses        int64
	fetches       int64
	errors        int64
	evictions     int64
	invalidations int64
}

// NewClient 創建查詢快取；cfg.Enabled 為 false 時每次都重新請求
func NewClient(cfg config.CacheConfig) *Client {
	c := &Client{
		config: cfg,
		store:  make(map[string]*entry),
		now:    time.Now,
		done:   make(chan struct{}),
	}

	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go c.startCleanup()
	}

	common.LogInfo("查詢快取已初始化",
		zap.Bool("啟用", cfg.Enabled),
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("新鮮時間", cfg.StaleTime),
		zap.Duration("回收時間", cfg.GCTime),
		zap.Int("重試次數", cfg.Retry),
	)

	return c
}

// Fetch 取得查詢結果：新鮮的快取直接回傳，否則請求並寫入快取。
// 同一鍵的並發請求只會發出一次。
func Fetch[T any](ctx context.Context, c *Client, q Query[T]) (T, error) {
	var zero T
	if q.Disabled {
		return zero, ErrDisabled
	}
	if q.Fn == nil {
		return zero, fmt.Errorf("query %s has no fetch function", q.Key)
	}

	keyStr := q.Key.String()
	if v, ok := c.lookup(keyStr); ok {
		if typed, ok := v.(T); ok {
			common.LogCacheHit(keyStr)
			return typed, nil
		}
	}
	common.LogCacheMiss(keyStr)

	retries := c.config.Retry
	if q.NoRetry {
		retries = 0
	}

	// 同一版本內的請求共用一次 flight；失效後的呼叫者會開啟新的 flight
	version := c.currentVersion()
	flight := keyStr + "@" + strconv.FormatUint(version, 10)
	ch := c.group.DoChan(flight, func() (interface{}, error) {
		// flight 不隨單一呼叫者取消，其他等待者仍可取得結果
		result, err := c.fetchWithRetry(context.WithoutCancel(ctx), keyStr, retries, func(ctx context.Context) (interface{}, error) {
			return q.Fn(ctx)
		})
		if err != nil {
			return nil, err
		}
		c.set(q.Key, keyStr, result, version)
		return result, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if res.Err != nil {
		return zero, res.Err
	}

	v := res.Val
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: unexpected cached type %T", keyStr, v)
	}
	return typed, nil
}

// lookup 回傳新鮮的快取值
func (c *Client) lookup(keyStr string) (interface{}, bool) {
	if !c.config.Enabled {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store[keyStr]
	if !ok || !c.fresh(e) {
		c.stats.misses++
		return nil, false
	}

	e.lastAccess = c.now()
	e.accessCount++
	c.stats.hits++
	return e.value, true
}

// fresh 未被失效且仍在新鮮時間內
func (c *Client) fresh(e *entry) bool {
	if e.stale {
		return false
	}
	return c.now().Sub(e.updatedAt) < c.config.StaleTime
}

func (c *Client) currentVersion() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// fetchWithRetry 失敗時以指數退避重試，上限為 MaxRetryDelay
func (c *Client) fetchWithRetry(ctx context.Context, keyStr string, retries int, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay(attempt - 1)
			common.LogDebug("查詢重試",
				zap.String("鍵", keyStr),
				zap.Int("次數", attempt),
				zap.Duration("延遲", delay),
			)
			if err := sleep(ctx, delay); err != nil {
				return nil, lastErr
			}
		}

		c.mu.Lock()
		c.stats.fetches++
		c.mu.Unlock()

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		c.mu.Lock()
		c.stats.errors++
		c.mu.Unlock()

		if ctx.Err() != nil || common.IsValidationError(err) {
			break
		}
	}

	common.LogWarn("查詢失敗",
		zap.String("鍵", keyStr),
		zap.Error(lastErr),
	)
	return nil, lastErr
}

// retryDelay 第 n 次重試前的等待時間
func (c *Client) retryDelay(n int) time.Duration {
	delay := c.config.RetryDelay
	for i := 0; i < n; i++ {
		delay *= 2
		if c.config.MaxRetryDelay > 0 && delay >= c.config.MaxRetryDelay {
			return c.config.MaxRetryDelay
		}
	}
	if c.config.MaxRetryDelay > 0 && delay > c.config.MaxRetryDelay {
		return c.config.MaxRetryDelay
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// set 寫入快取；若請求期間發生失效，條目直接標記為過期
func (c *Client) set(key Key, keyStr string, value interface{}, version uint64) {
	if !c.config.Enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[keyStr]; !exists && c.config.MaxSize > 0 && len(c.store) >= c.config.MaxSize {
		evicted := c.cleanup()
		if evicted > 0 {
			common.LogDebug("快取清理執行", zap.Int("清理數量", evicted))
		}
		if len(c.store) >= c.config.MaxSize {
			c.evictLRU()
		}
	}

	now := c.now()
	c.store[keyStr] = &entry{
		key:        key,
		value:      value,
		updatedAt:  now,
		lastAccess: now,
		stale:      version != c.version,
	}
}

// Invalidate 將所有以 prefix 開頭的條目標記為過期，回傳影響數量
func (c *Client) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	count := 0
	for _, e := range c.store {
		if e.key.HasPrefix(prefix) {
			e.stale = true
			count++
		}
	}
	c.stats.invalidations += int64(count)

	common.LogDebug("快取失效",
		zap.String("前綴", prefix.String()),
		zap.Int("數量", count),
	)
	return count
}

// Remove 刪除所有以 prefix 開頭的條目，回傳刪除數量
func (c *Client) Remove(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	count := 0
	for keyStr, e := range c.store {
		if e.key.HasPrefix(prefix) {
			delete(c.store, keyStr)
			count++
		}
	}

	common.LogDebug("快取移除",
		zap.String("前綴", prefix.String()),
		zap.Int("數量", count),
	)
	return count
}

// Clear 清空所有條目
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	c.store = make(map[string]*entry)
	common.LogDebug("快取已清空")
}

// IsFresh 條目存在、未失效且仍在新鮮時間內
func (c *Client) IsFresh(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.store[key.String()]
	return ok && c.fresh(e)
}

// startCleanup 定期回收長時間未使用的條目
func (c *Client) startCleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.cleanup()
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}

// cleanup 移除超過 GCTime 未被存取的條目，呼叫者需持有寫鎖
func (c *Client) cleanup() int {
	if c.config.GCTime <= 0 {
		return 0
	}

	now := c.now()
	count := 0
	for key, e := range c.store {
		if now.Sub(e.lastAccess) > c.config.GCTime {
			delete(c.store, key)
			count++
			c.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("Cleaned up unused cache entries",
			zap.Int("count", count),
			zap.Int64("total_evictions", c.stats.evictions),
			zap.Int("remaining_size", len(c.store)),
		)
	}
	return count
}

// evictLRU 淘汰存取次數最少、最久未使用的條目
func (c *Client) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, e := range c.store {
		if oldestKey == "" ||
			e.accessCount < lowestAccessCount ||
			(e.accessCount == lowestAccessCount && e.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = e.lastAccess
			lowestAccessCount = e.accessCount
		}
	}

	if oldestKey != "" {
		delete(c.store, oldestKey)
		c.stats.evictions++
		common.LogDebug("快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// GetStats 獲取快取統計信息
func (c *Client) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ratio := 0.0
	if total := c.stats.hits + c.stats.misses; total > 0 {
		ratio = float64(c.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"enabled":       c.config.Enabled,
		"size":          len(c.store),
		"max_size":      c.config.MaxSize,
		"hits":          c.stats.hits,
		"misses":        c.stats.misses,
		"fetches":       c.stats.fetches,
		"errors":        c.stats.errors,
		"evictions":     c.stats.evictions,
		"invalidations": c.stats.invalidations,
		"hit_ratio":     ratio,
	}
}

// Close 停止清理協程並清空快取
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		c.store = make(map[string]*entry)
		hits, misses, evictions := c.stats.hits, c.stats.misses, c.stats.evictions
		c.mu.Unlock()

		common.LogInfo("查詢快取已關閉",
			zap.Int64("命中次數", hits),
			zap.Int64("未命中次數", misses),
			zap.Int64("淘汰次數", evictions),
		)
	})
	return nil
}
