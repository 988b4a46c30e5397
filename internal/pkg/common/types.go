package common

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// User 使用者
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// AuthResponse 登入或註冊成功後的結果
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// BackendAuthResponse 後端實際回傳的登入格式
type BackendAuthResponse struct {
	AccessToken string `json:"AccessToken"`
	ID          string `json:"id"`
	Username    string `json:"username"`
}

// RegisterRequest 註冊請求
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest 登入請求
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Recipe 已保存的食譜
type Recipe struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Title            string    `json:"title"`
	IngredientsUsed  []string  `json:"ingredients_used"`
	ContentMarkdown  string    `json:"content_markdown"`
	CaloriesEstimate int       `json:"calories_estimate"`
	CreatedAt        time.Time `json:"created_at"`
	IsPublic         bool      `json:"is_public,omitempty"`
	ShareToken       *string   `json:"share_token,omitempty"`
}

// SharedToken 回傳分享 token，未分享時為空字串
func (r Recipe) SharedToken() string {
	if !r.IsPublic || r.ShareToken == nil {
		return ""
	}
	return *r.ShareToken
}

// GenerateRecipeRequest AI 生成食譜請求
type GenerateRecipeRequest struct {
	Ingredients []string `json:"ingredients"`
	Preferences string   `json:"preferences,omitempty"`
	Language    string   `json:"language,omitempty"`
}

// GenerateRecipeResponse AI 生成結果
type GenerateRecipeResponse struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Calories int    `json:"calories"`
}

// GeneratedRecipe 尚未保存的草稿，附帶產生它的食材
type GeneratedRecipe struct {
	GenerateRecipeResponse
	Ingredients []string
}

// SaveRequest 轉換為保存請求
func (d GeneratedRecipe) SaveRequest() SaveRecipeRequest {
	return SaveRecipeRequest{
		Title:            d.Title,
		ContentMarkdown:  d.Content,
		IngredientsUsed:  d.Ingredients,
		CaloriesEstimate: d.Calories,
	}
}

// SaveRecipeRequest 保存食譜請求
type SaveRecipeRequest struct {
	Title            string   `json:"title"`
	ContentMarkdown  string   `json:"content_markdown"`
	IngredientsUsed  []string `json:"ingredients_used"`
	CaloriesEstimate int      `json:"calories_estimate"`
}

// RecipeFilter 食譜列表篩選條件
type RecipeFilter struct {
	Ingredient  string `json:"ingredient,omitempty"`
	MaxCalories int    `json:"max_calories,omitempty"`
}

// IsZero 是否沒有任何篩選條件
func (f RecipeFilter) IsZero() bool {
	return strings.TrimSpace(f.Ingredient) == "" && f.MaxCalories <= 0
}

// Query 轉換為查詢參數
func (f RecipeFilter) Query() url.Values {
	q := url.Values{}
	if ing := strings.TrimSpace(f.Ingredient); ing != "" {
		q.Set("ingredient", ing)
	}
	if f.MaxCalories > 0 {
		q.Set("max_calories", strconv.Itoa(f.MaxCalories))
	}
	return q
}

// Key 篩選條件的快取鍵片段
func (f RecipeFilter) Key() string {
	if f.IsZero() {
		return "all"
	}
	return f.Query().Encode()
}

// Unit 食材庫存單位
type Unit string

const (
	UnitPiece      Unit = "unit"
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitLiter      Unit = "l"
	UnitMilliliter Unit = "ml"
	UnitTablespoon Unit = "tbsp"
	UnitTeaspoon   Unit = "tsp"
	UnitCup        Unit = "cup"
)

// Units 所有可選單位，依表單顯示順序
var Units = []Unit{UnitPiece, UnitKilogram, UnitGram, UnitLiter, UnitMilliliter, UnitTablespoon, UnitTeaspoon, UnitCup}

// ParseUnit 解析單位，空字串視為 unit
func ParseUnit(s string) (Unit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return UnitPiece, nil
	}
	for _, u := range Units {
		if string(u) == s {
			return u, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("unknown unit %q", s))
}

// PantryItem 食材庫存項目
type PantryItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Quantity  string    `json:"quantity"`
	Unit      Unit      `json:"unit,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayQuantity 顯示用數量，unit 不顯示單位
func (p PantryItem) DisplayQuantity() string {
	if p.Unit == "" || p.Unit == UnitPiece {
		return p.Quantity
	}
	return strings.TrimSpace(p.Quantity + " " + string(p.Unit))
}

// AddPantryItemRequest 新增庫存請求
type AddPantryItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     Unit   `json:"unit"`
}

// MealType 餐別
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes 每日四個餐別，依顯示順序
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// ParseMealType 解析餐別
func ParseMealType(s string) (MealType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range MealTypes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("unknown meal type %q", s))
}

// MealPlanEntry 餐點計畫項目
type MealPlanEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	RecipeID    string    `json:"recipe_id"`
	Date        string    `json:"date"`
	MealType    MealType  `json:"meal_type"`
	RecipeTitle string    `json:"recipe_title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AddMealPlanRequest 新增餐點計畫請求
type AddMealPlanRequest struct {
	RecipeID string   `json:"recipe_id"`
	Date     string   `json:"date"`
	MealType MealType `json:"meal_type"`
}
