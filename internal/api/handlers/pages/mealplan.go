package pages

import (
	"net/http"
	"net/url"

	"fridgechef/internal/core/mealplan"
	"fridgechef/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// slotView 正在新增食譜的格子
type slotView struct {
	Date     string
	MealType common.MealType
	Search   string
	Recipes  []common.Recipe
}

// MealPlan 週計畫表格；slot_date 與 slot_type 同時存在時顯示新增視窗
func (h *Handler) MealPlan(c *gin.Context) {
	now := h.now()
	week := mealplan.WeekOf(mealplan.ParseAnchor(c.Query("date"), now))
	start, end := week.Range()
	ctx := c.Request.Context()

	data := gin.H{
		"Title":  "Meal Plan",
		"Anchor": week.Anchor.Format(mealplan.DateLayout),
		"Prev":   week.Prev().Anchor.Format(mealplan.DateLayout),
		"Next":   week.Next().Anchor.Format(mealplan.DateLayout),
		"Today":  mealplan.Today(now).Anchor.Format(mealplan.DateLayout),
		"Start":  start,
		"End":    end,
	}

	entries, err := h.sync.MealPlan(ctx, start, end)
	if err != nil {
		_ = c.Error(err)
		data["Error"] = err.Error()
		entries = []common.MealPlanEntry{}
	}
	data["Grid"] = mealplan.BuildGrid(week, entries)

	if slotDate, slotType := c.Query("slot_date"), c.Query("slot_type"); slotDate != "" && slotType != "" {
		if mt, err := common.ParseMealType(slotType); err == nil {
			slot := slotView{Date: slotDate, MealType: mt, Search: c.Query("q")}
			recipes, err := h.sync.Recipes(ctx, common.RecipeFilter{})
			if err != nil {
				_ = c.Error(err)
				recipes = []common.Recipe{}
			}
			slot.Recipes = mealplan.SearchRecipes(recipes, slot.Search)
			data["Slot"] = slot
		}
	}

	h.render(c, http.StatusOK, "meal_plan.html", data)
}

// AddToMealPlan 把食譜加入格子；失敗時保持視窗開啟
func (h *Handler) AddToMealPlan(c *gin.Context) {
	anchor := c.PostForm("anchor")
	date, mealType := c.PostForm("date"), c.PostForm("meal_type")

	if _, err := h.sync.AddToMealPlan(c.Request.Context(), c.PostForm("recipe_id"), date, mealType); err != nil {
		_ = c.Error(err)
		redirect(c, mealPlanURL(anchor, url.Values{"slot_date": {date}, "slot_type": {mealType}}))
		return
	}
	redirect(c, mealPlanURL(anchor, nil))
}

// DeleteMealPlan 移除計畫項目
func (h *Handler) DeleteMealPlan(c *gin.Context) {
	if err := h.sync.DeleteMealPlan(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
	}
	redirect(c, mealPlanURL(c.PostForm("anchor"), nil))
}

func mealPlanURL(anchor string, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	if anchor != "" {
		q.Set("date", anchor)
	}
	if len(q) == 0 {
		return "/meal-plan"
	}
	return "/meal-plan?" + q.Encode()
}
