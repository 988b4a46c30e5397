package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fridgechef/internal/core/client"
	"fridgechef/internal/core/datasync"
	"fridgechef/internal/core/notify"
	"fridgechef/internal/core/query"
	"fridgechef/internal/core/recipe"
	"fridgechef/internal/core/session"
	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"

	"go.uber.org/zap"
)

// errReported 錯誤已經以通知的形式輸出
var errReported = errors.New("operation failed")

// app 一次執行需要的服務
type app struct {
	cfg        *config.Config
	cache      *query.Client
	sync       *datasync.Service
	recipes    *recipe.Service
	closeStore func() error
}

// newApp 載入設定並組裝服務；logLevel 為空時使用設定值
func newApp(ctx context.Context, logLevel string) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	if err := common.InitLogger(logLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	common.LogInfo("載入設定",
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("session_driver", cfg.Session.Driver),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	store, closeStore, err := session.Open(ctx, cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	api := client.NewClient(cfg.Backend, store)
	cache := query.NewClient(cfg.Cache)
	sync := datasync.NewService(api, cache, notify.NewHub(cfg.Notify), store)

	return &app{
		cfg:        cfg,
		cache:      cache,
		sync:       sync,
		recipes:    recipe.NewService(sync, recipe.NewWorkbench(), cfg.App.Language),
		closeStore: closeStore,
	}, nil
}

// Close 釋放快取與登入狀態連線
func (a *app) Close() {
	_ = a.cache.Close()
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil {
			common.LogWarn("關閉登入狀態儲存失敗", zap.Error(err))
		}
	}
	common.Sync()
}

// printNotes 印出待顯示的通知，err 不為空時回傳 errReported
func (a *app) printNotes(w io.Writer, err error) error {
	notes := a.sync.Notifications(context.Background()).Drain()
	for _, n := range notes {
		fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Message)
	}
	if err == nil {
		return nil
	}
	if len(notes) == 0 {
		return err
	}
	return errReported
}
