// Package datasync 把每個後端操作綁定為快取查詢或一次性寫入，
// 並決定寫入成功後失效哪些快取、顯示哪些訊息。
package datasync

import (
	"context"
	"time"

	"fridgechef/internal/core/notify"
	"fridgechef/internal/core/query"
	"fridgechef/internal/core/session"
	"fridgechef/internal/pkg/common"
)

// API 後端客戶端需要提供的操作
type API interface {
	Register(ctx context.Context, req common.RegisterRequest) (*common.AuthResponse, error)
	Login(ctx context.Context, req common.LoginRequest) (*common.AuthResponse, error)
	Logout(ctx context.Context) error

	GenerateRecipe(ctx context.Context, req common.GenerateRecipeRequest) (*common.GenerateRecipeResponse, error)
	SaveRecipe(ctx context.Context, req common.SaveRecipeRequest) (*common.Recipe, error)
	GetRecipes(ctx context.Context, filter common.RecipeFilter) ([]common.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
	ToggleShareRecipe(ctx context.Context, id string) (*common.Recipe, error)
	GetPublicRecipe(ctx context.Context, token string) (*common.Recipe, error)

	GetPantryItems(ctx context.Context) ([]common.PantryItem, error)
	AddPantryItem(ctx context.Context, req common.AddPantryItemRequest) (*common.PantryItem, error)
	DeletePantryItem(ctx context.Context, id string) error

	GetMealPlan(ctx context.Context, startDate, endDate string) ([]common.MealPlanEntry, error)
	AddToMealPlan(ctx context.Context, req common.AddMealPlanRequest) (*common.MealPlanEntry, error)
	DeleteMealPlan(ctx context.Context, id string) error
}

// 查詢家族的鍵前綴
var (
	RecipesKey      = query.Key{"recipes"}
	PublicRecipeKey = query.Key{"public-recipe"}
	PantryKey       = query.Key{"pantry"}
	MealPlanKey     = query.Key{"meal-plan"}
)

// 顯示給使用者的訊息
const (
	MsgRecipeDeleted       = "Recipe deleted"
	MsgRecipeDeleteFailed  = "Failed to delete recipe"
	MsgShareFailed         = "Failed to update share settings"
	MsgRecipeGenerated     = "Recipe generated successfully!"
	MsgGenerateFailed      = "Failed to generate recipe"
	MsgNoIngredients       = "Please add at least one ingredient"
	MsgRecipeSaved         = "Recipe saved successfully!"
	MsgRecipeSaveFailed    = "Failed to save recipe"
	MsgPantryAdded         = "Item added to pantry"
	MsgPantryAddFailed     = "Failed to add item"
	MsgPantryNameRequired  = "Please enter an item name"
	MsgPantryRemoved       = "Item removed from pantry"
	MsgPantryRemoveFailed  = "Failed to remove item"
	MsgMealAdded           = "Added to meal plan"
	MsgMealAddFailed       = "Failed to add to meal plan"
	MsgMealRecipeRequired  = "Please select a recipe"
	MsgMealRemoved         = "Removed from meal plan"
	MsgMealRemoveFailed    = "Failed to remove from meal plan"
	MsgWelcomeBack         = "Welcome back!"
	MsgAccountCreated      = "Account created successfully!"
	MsgSignedOut           = "Signed out"
	MsgCredentialsRequired = "Please fill in all fields"
)

// Service 資料同步層
type Service struct {
	api     API
	cache   *query.Client
	notify  *notify.Hub
	session session.Store
	now     func() time.Time
}

// NewService 創建資料同步層
func NewService(api API, cache *query.Client, notifier *notify.Hub, store session.Store) *Service {
	return &Service{
		api:     api,
		cache:   cache,
		notify:  notifier,
		session: store,
		now:     time.Now,
	}
}

// Cache 回傳底層查詢快取
func (s *Service) Cache() *query.Client {
	return s.cache
}

// Notifications 回傳 ctx 所屬瀏覽器的訊息佇列
func (s *Service) Notifications(ctx context.Context) notify.Scope {
	id, _ := session.IDFromContext(ctx)
	return s.notify.For(id)
}

// NotificationHub 回傳所有瀏覽器共用的訊息佇列集合
func (s *Service) NotificationHub() *notify.Hub {
	return s.notify
}

// scoped 為使用者資料的快取鍵加上瀏覽器 session 前綴，不同瀏覽器互不共用
func scoped(ctx context.Context, key query.Key) query.Key {
	id, ok := session.IDFromContext(ctx)
	if !ok {
		return key
	}
	return append(query.Key{"session:" + id}, key...)
}

// resetCache 移除此瀏覽器的快取；沒有 session ID 時清空整個快取
func (s *Service) resetCache(ctx context.Context) {
	if id, ok := session.IDFromContext(ctx); ok {
		s.cache.Remove(query.Key{"session:" + id})
		return
	}
	s.cache.Clear()
}

// CurrentSession 目前有效的登入狀態，沒有或已過期時回傳 session.ErrNoSession
func (s *Service) CurrentSession(ctx context.Context) (*session.Session, error) {
	return session.Active(ctx, s.session, s.now())
}

// invalidate 建立成功回呼：失效 prefix 並顯示成功訊息（msg 為空時不顯示）
func invalidate[R, V any](s *Service, prefix query.Key, msg string) func(context.Context, R, V) {
	return func(ctx context.Context, _ R, _ V) {
		s.cache.Invalidate(scoped(ctx, prefix))
		if msg != "" {
			s.Notifications(ctx).Success(msg)
		}
	}
}

// failWith 建立錯誤回呼：驗證錯誤顯示自身訊息，其餘顯示固定訊息
func failWith[V any](s *Service, msg string) func(context.Context, error, V) {
	return func(ctx context.Context, err error, _ V) {
		if common.IsValidationError(err) {
			s.Notifications(ctx).Error(err.Error())
			return
		}
		s.Notifications(ctx).Error(msg)
	}
}
