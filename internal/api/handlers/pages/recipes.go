package pages

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fridgechef/internal/core/client"
	"fridgechef/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// filterFrom 從查詢參數取得篩選條件，無效的卡路里視為未設定
func filterFrom(values url.Values) common.RecipeFilter {
	f := common.RecipeFilter{Ingredient: strings.TrimSpace(values.Get("ingredient"))}
	if n, err := strconv.Atoi(strings.TrimSpace(values.Get("max_calories"))); err == nil && n > 0 {
		f.MaxCalories = n
	}
	return f
}

// MyRecipes 已保存的食譜列表
func (h *Handler) MyRecipes(c *gin.Context) {
	filter := filterFrom(c.Request.URL.Query())

	data := gin.H{
		"Title":  "My Recipes",
		"Filter": filter,
		"Open":   c.Query("open"),
		"Query":  filter.Query().Encode(),
	}

	recipes, err := h.sync.Recipes(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		data["Error"] = err.Error()
		recipes = []common.Recipe{}
	}
	data["Recipes"] = recipes

	h.render(c, http.StatusOK, "my_recipes.html", data)
}

// DeleteRecipe 刪除食譜
func (h *Handler) DeleteRecipe(c *gin.Context) {
	if err := h.sync.DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
	}
	redirect(c, myRecipesURL(c.PostForm("query")))
}

// ShareRecipe 切換分享狀態，公開時顯示分享連結
func (h *Handler) ShareRecipe(c *gin.Context) {
	updated, err := h.sync.ToggleShareRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
	} else if token := updated.SharedToken(); token != "" {
		h.sync.Notifications(c.Request.Context()).Info("Share link: " + h.shareURL(token))
	}
	redirect(c, myRecipesURL(c.PostForm("query")))
}

// myRecipesURL 保留原本的篩選條件
func myRecipesURL(rawQuery string) string {
	return recipesLink(rawQuery, "")
}

// recipesLink 列表網址，open 不為空時展開該食譜
func recipesLink(rawQuery, open string) string {
	q := filterFrom(parseQuery(rawQuery)).Query()
	if open != "" {
		q.Set("open", open)
	}
	if len(q) == 0 {
		return "/my-recipes"
	}
	return "/my-recipes?" + q.Encode()
}

func parseQuery(raw string) url.Values {
	v, err := url.ParseQuery(raw)
	if err != nil {
		return url.Values{}
	}
	return v
}

// SharedRecipe 公開的食譜頁，不需登入
func (h *Handler) SharedRecipe(c *gin.Context) {
	r, err := h.sync.PublicRecipe(c.Request.Context(), c.Param("token"))
	if err != nil {
		// 後端回報的訊息直接顯示，連線失敗只顯示固定訊息
		failure, message := common.ErrNotFound.Wrap(err), err.Error()
		if !client.IsBackendError(err) {
			failure = common.ErrBadGateway.Wrap(err)
			message = failure.Message
		}
		_ = c.Error(failure)
		h.render(c, failure.Status, "shared.html", gin.H{
			"Title": "Recipe not found",
			"Error": message,
		})
		return
	}

	h.render(c, http.StatusOK, "shared.html", gin.H{
		"Title":  r.Title,
		"Recipe": r,
	})
}
