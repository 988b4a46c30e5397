package pages

import (
	"errors"
	"net/http"

	"fridgechef/internal/core/recipe"

	"github.com/gin-gonic/gin"
)

// Dashboard 食材清單、偏好與生成結果
func (h *Handler) Dashboard(c *gin.Context) {
	draft := h.recipes.Workbench().Get(userID(c))
	h.render(c, http.StatusOK, "dashboard.html", gin.H{
		"Title": "AI Recipe Generator",
		"Draft": draft,
	})
}

// DashboardAction 依 action 欄位處理首頁表單
func (h *Handler) DashboardAction(c *gin.Context) {
	id := userID(c)
	bench := h.recipes.Workbench()
	ctx := c.Request.Context()

	switch c.PostForm("action") {
	case "add":
		bench.AddIngredient(id, c.PostForm("ingredient"))
	case "remove":
		bench.RemoveIngredient(id, c.PostForm("ingredient"))
	case "generate":
		bench.SetPreferences(id, c.PostForm("preferences"))
		if _, err := h.recipes.Generate(ctx, id); err != nil {
			_ = c.Error(err)
		}
	case "save":
		if _, err := h.recipes.Save(ctx, id); err != nil {
			if errors.Is(err, recipe.ErrNoDraft) {
				h.sync.Notifications(ctx).Error("Generate a recipe first")
			}
			_ = c.Error(err)
		}
	default:
		h.sync.Notifications(ctx).Error("Unknown action")
	}

	redirect(c, "/dashboard")
}
