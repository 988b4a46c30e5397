package pages

import (
	"net/http"

	"fridgechef/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Pantry 食材庫存
func (h *Handler) Pantry(c *gin.Context) {
	data := gin.H{
		"Title": "My Pantry",
		"Units": common.Units,
	}

	items, err := h.sync.Pantry(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		data["Error"] = err.Error()
		items = []common.PantryItem{}
	}
	data["Items"] = items

	h.render(c, http.StatusOK, "pantry.html", data)
}

// AddPantryItem 新增食材
func (h *Handler) AddPantryItem(c *gin.Context) {
	_, err := h.sync.AddPantryItem(c.Request.Context(),
		c.PostForm("name"),
		c.PostForm("quantity"),
		c.PostForm("unit"),
	)
	if err != nil {
		_ = c.Error(err)
	}
	redirect(c, "/pantry")
}

// DeletePantryItem 刪除食材
func (h *Handler) DeletePantryItem(c *gin.Context) {
	if err := h.sync.DeletePantryItem(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
	}
	redirect(c, "/pantry")
}
