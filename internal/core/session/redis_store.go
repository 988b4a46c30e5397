package session

import (
	"context"
	"fmt"

	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// RedisStore 以 Redis 保存登入狀態
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 創建 Redis 登入狀態並測試連線
func NewRedisStore(ctx context.Context, cfg config.SessionConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, prefix: cfg.RedisPrefix}, nil
}

func (r *RedisStore) key(ctx context.Context, name string) string {
	return r.prefix + keyName(ctx, name)
}

func (r *RedisStore) Get(ctx context.Context) (*Session, error) {
	values, err := r.client.MGet(ctx, r.key(ctx, TokenKey), r.key(ctx, UserKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	token, _ := values[0].(string)
	if token == "" {
		return nil, ErrNoSession
	}

	s := &Session{Token: token}
	if raw, ok := values[1].(string); ok && raw != "" {
		if err := common.ParseJSON(raw, &s.User); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stored user: %w", err)
		}
	}
	return s, nil
}

func (r *RedisStore) Set(ctx context.Context, s *Session) error {
	user, err := common.ToJSON(s.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	// token 過期由後端判斷，這裡不設 TTL
	if err := r.client.MSet(ctx, r.key(ctx, TokenKey), s.Token, r.key(ctx, UserKey), user).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(ctx, TokenKey), r.key(ctx, UserKey)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連線
func (r *RedisStore) Close() error {
	return r.client.Close()
}
