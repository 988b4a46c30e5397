package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Backend     BackendConfig   `mapstructure:"backend"`
	Session     SessionConfig   `mapstructure:"session"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Notify      NotifyConfig    `mapstructure:"notify"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	PublicURL   string          `mapstructure:"public_url"`
	LogLevel    string          `mapstructure:"log_level"`
	LogFile     string          `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
	Language string `mapstructure:"language"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodySize  int64         `mapstructure:"max_body_size"`
}

// BackendConfig 後端 API 設定
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout 為 0 時不設逾時，交由底層網路堆疊處理
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig 登入狀態保存設定
type SessionConfig struct {
	Driver      string `mapstructure:"driver"`
	Path        string `mapstructure:"path"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisDB     int    `mapstructure:"redis_db"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// CacheConfig 查詢快取配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	StaleTime       time.Duration `mapstructure:"stale_time"`
	GCTime          time.Duration `mapstructure:"gc_time"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Retry           int           `mapstructure:"retry"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	MaxRetryDelay   time.Duration `mapstructure:"max_retry_delay"`
}

// NotifyConfig 通知佇列設定
type NotifyConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

const (
	SessionDriverFile   = "file"
	SessionDriverRedis  = "redis"
	SessionDriverMemory = "memory"
)

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時沿用環境變數
	_ = godotenv.Load()

	viper.Reset()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("backend.base_url", "BACKEND_URL")
	viper.BindEnv("backend.timeout", "BACKEND_TIMEOUT")
	viper.BindEnv("session.driver", "SESSION_DRIVER")
	viper.BindEnv("session.path", "SESSION_PATH")
	viper.BindEnv("session.redis_addr", "REDIS_ADDR")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.stale_time", "CACHE_STALE_TIME")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("server.host", "HOST")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("public_url", "PUBLIC_URL")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")
	viper.BindEnv("log_file", "LOG_FILE")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.PublicURL == "" {
		config.PublicURL = fmt.Sprintf("http://localhost:%d", config.Server.Port)
	}
	config.Backend.BaseURL = strings.TrimRight(config.Backend.BaseURL, "/")

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "fridgechef")
	viper.SetDefault("app.language", "")

	// 伺服器設定
	// 預設只接受本機連線
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "180s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.max_body_size", 1<<20)

	// 後端設定
	viper.SetDefault("backend.base_url", "http://localhost:8080/api/v1")
	viper.SetDefault("backend.timeout", "0s")

	// 登入狀態
	viper.SetDefault("session.driver", SessionDriverFile)
	viper.SetDefault("session.path", ".fridgechef/session.json")
	viper.SetDefault("session.redis_addr", "localhost:6379")
	viper.SetDefault("session.redis_db", 0)
	viper.SetDefault("session.redis_prefix", "fridgechef:session:")

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 500)
	viper.SetDefault("cache.stale_time", "30s")
	viper.SetDefault("cache.gc_time", "5m")
	viper.SetDefault("cache.cleanup_interval", "1m")
	viper.SetDefault("cache.retry", 3)
	viper.SetDefault("cache.retry_delay", "1s")
	viper.SetDefault("cache.max_retry_delay", "30s")

	// 通知設定
	viper.SetDefault("notify.max_size", 50)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_file", "logs/app.log")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Backend.BaseURL == "" {
		return fmt.Errorf("backend base url is required")
	}
	if config.Backend.Timeout < 0 {
		return fmt.Errorf("invalid backend timeout")
	}

	switch config.Session.Driver {
	case SessionDriverFile:
		if config.Session.Path == "" {
			return fmt.Errorf("session path is required for file driver")
		}
	case SessionDriverRedis:
		if config.Session.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis driver")
		}
	case SessionDriverMemory:
	default:
		return fmt.Errorf("unknown session driver %q", config.Session.Driver)
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.StaleTime < 0 {
			return fmt.Errorf("invalid cache stale time")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}
	if config.Cache.Retry < 0 {
		return fmt.Errorf("invalid cache retry count")
	}

	if config.Notify.MaxSize <= 0 {
		return fmt.Errorf("invalid notify max size")
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit settings")
		}
	}

	return nil
}
