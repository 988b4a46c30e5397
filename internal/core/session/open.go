package session

import (
	"context"
	"fmt"

	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"

	"go.uber.org/zap"
)

// Open 依設定創建登入狀態保存方式，回傳的 close 函式在程式結束時呼叫
func Open(ctx context.Context, cfg config.SessionConfig) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.SessionDriverRedis:
		store, err := NewRedisStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		common.LogInfo("登入狀態使用 Redis", zap.String("addr", cfg.RedisAddr))
		return store, store.Close, nil
	case config.SessionDriverMemory:
		common.LogInfo("登入狀態僅保存在記憶體")
		return NewMemoryStore(), noop, nil
	case config.SessionDriverFile, "":
		common.LogInfo("登入狀態使用檔案", zap.String("path", cfg.Path))
		return NewFileStore(cfg.Path), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}
}
