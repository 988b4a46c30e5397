package api

import (
	"fmt"
	"strings"
	"time"

	"fridgechef/internal/api/handlers/health"
	"fridgechef/internal/api/handlers/pages"
	"fridgechef/internal/api/middleware"
	"fridgechef/internal/core/datasync"
	"fridgechef/internal/core/recipe"
	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 頁面伺服器需要的服務
type Dependencies struct {
	Sync    *datasync.Service
	Recipes *recipe.Service
}

// SetupRouter 設置路由，回傳的 cleanup 需在伺服器關閉後呼叫
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, func(), error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if deps.Sync == nil || deps.Recipes == nil {
		return nil, nil, fmt.Errorf("router dependencies are not initialized")
	}

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	pageHandler := pages.NewHandler(cfg, deps.Sync, deps.Recipes)
	tmpl, err := pageHandler.Templates()
	if err != nil {
		common.LogError("Failed to parse page templates", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	// 創建路由引擎
	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.PublicURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	cleanup := func() {}
	if cfg.DedupWindow > 0 {
		dedup := middleware.NewDeduplicator(cfg.DedupWindow, "/share")
		router.Use(dedup.Handler())
		cleanup = dedup.Close
	}

	// 注入健康檢查需要的物件
	router.Use(func(c *gin.Context) {
		c.Set(health.ConfigKey, cfg)
		c.Set(health.CacheKey, deps.Sync.Cache())
		c.Set(health.NotifierKey, deps.Sync.NotificationHub())
		c.Next()
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// 公開分享頁不讀取登入狀態，也不取出任何訊息
	router.GET("/shared/:token", pageHandler.SharedRecipe)

	// 以 cookie 區分瀏覽器的頁面
	browser := router.Group("/",
		middleware.BrowserSession(strings.HasPrefix(cfg.PublicURL, "https://")),
		middleware.LoadSession(deps.Sync),
	)
	{
		browser.GET("/", pageHandler.Landing)
		browser.GET("/login", pageHandler.LoginForm)
		browser.POST("/login", pageHandler.Login)
		browser.GET("/register", pageHandler.RegisterForm)
		browser.POST("/register", pageHandler.Register)
		browser.POST("/logout", pageHandler.Logout)
	}

	// 需要登入的頁面
	protected := browser.Group("/", middleware.RequireSession())
	{
		protected.GET("/dashboard", pageHandler.Dashboard)
		protected.POST("/dashboard", pageHandler.DashboardAction)

		protected.GET("/my-recipes", pageHandler.MyRecipes)
		protected.POST("/my-recipes/:id/delete", pageHandler.DeleteRecipe)
		protected.POST("/my-recipes/:id/share", pageHandler.ShareRecipe)

		protected.GET("/pantry", pageHandler.Pantry)
		protected.POST("/pantry", pageHandler.AddPantryItem)
		protected.POST("/pantry/:id/delete", pageHandler.DeletePantryItem)

		protected.GET("/meal-plan", pageHandler.MealPlan)
		protected.POST("/meal-plan", pageHandler.AddToMealPlan)
		protected.POST("/meal-plan/:id/delete", pageHandler.DeleteMealPlan)
	}

	router.NoRoute(pageHandler.NotFound)

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Int64("max_body_size", cfg.Server.MaxBodySize),
	)

	return router, cleanup, nil
}
