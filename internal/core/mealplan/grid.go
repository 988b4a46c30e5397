package mealplan

import (
	"strings"
	"time"

	"fridgechef/internal/pkg/common"
)

// Slot 某天某餐的格子，可以有多筆
type Slot struct {
	Date     string
	MealType common.MealType
	Entries  []common.MealPlanEntry
}

// Day 表格中的一天
type Day struct {
	Date  time.Time
	Key   string
	Label string
	Slots []Slot
}

// Grid 7 天 × 4 餐
type Grid struct {
	Week Week
	Days []Day
}

// BuildGrid 把項目放進日期與餐別完全相符的格子
func BuildGrid(week Week, entries []common.MealPlanEntry) Grid {
	grid := Grid{Week: week, Days: make([]Day, 0, 7)}

	for _, d := range week.Days() {
		key := d.Format(DateLayout)
		day := Day{
			Date:  d,
			Key:   key,
			Label: d.Format(LabelLayout),
			Slots: make([]Slot, 0, len(common.MealTypes)),
		}
		for _, mt := range common.MealTypes {
			slot := Slot{Date: key, MealType: mt}
			for _, e := range entries {
				if e.Date == key && e.MealType == mt {
					slot.Entries = append(slot.Entries, e)
				}
			}
			day.Slots = append(day.Slots, slot)
		}
		grid.Days = append(grid.Days, day)
	}
	return grid
}

// Slot 依日期與餐別取得格子
func (g Grid) Slot(date string, mealType common.MealType) (Slot, bool) {
	for _, d := range g.Days {
		if d.Key != date {
			continue
		}
		for _, s := range d.Slots {
			if s.MealType == mealType {
				return s, true
			}
		}
	}
	return Slot{}, false
}

// EntryTitle 顯示用標題，沒有時為 "Recipe"
func EntryTitle(e common.MealPlanEntry) string {
	if e.RecipeTitle == "" {
		return "Recipe"
	}
	return e.RecipeTitle
}

// SearchRecipes 標題不分大小寫包含 term 的食譜；term 為空時全部回傳
func SearchRecipes(recipes []common.Recipe, term string) []common.Recipe {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]common.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if strings.Contains(strings.ToLower(r.Title), term) {
			out = append(out, r)
		}
	}
	return out
}
