package recipe

import (
	"strings"
	"sync"

	"fridgechef/internal/pkg/common"
)

// Draft 使用者在首頁編輯中的內容
type Draft struct {
	Ingredients []string
	Preferences string
	Recipe      *common.GeneratedRecipe
}

// Workbench 每位使用者一份草稿，只存在記憶體中
type Workbench struct {
	mu     sync.Mutex
	drafts map[string]*Draft
}

// NewWorkbench 創建草稿區
func NewWorkbench() *Workbench {
	return &Workbench{drafts: make(map[string]*Draft)}
}

// Get 取得草稿副本
func (w *Workbench) Get(userID string) Draft {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, ok := w.drafts[userID]
	if !ok {
		return Draft{Ingredients: []string{}}
	}
	return Draft{
		Ingredients: append([]string{}, d.Ingredients...),
		Preferences: d.Preferences,
		Recipe:      d.Recipe,
	}
}

// AddIngredient 加入食材；空白或重複時回傳 false
func (w *Workbench) AddIngredient(userID, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	d := w.draft(userID)
	for _, existing := range d.Ingredients {
		if existing == name {
			return false
		}
	}
	d.Ingredients = append(d.Ingredients, name)
	return true
}

// RemoveIngredient 移除食材
func (w *Workbench) RemoveIngredient(userID, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d := w.draft(userID)
	kept := d.Ingredients[:0]
	for _, existing := range d.Ingredients {
		if existing != name {
			kept = append(kept, existing)
		}
	}
	d.Ingredients = kept
}

// SetPreferences 更新偏好說明
func (w *Workbench) SetPreferences(userID, preferences string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft(userID).Preferences = preferences
}

// SetRecipe 保存最近一次生成的結果
func (w *Workbench) SetRecipe(userID string, r *common.GeneratedRecipe) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft(userID).Recipe = r
}

// Reset 清除使用者的草稿
func (w *Workbench) Reset(userID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.drafts, userID)
}

// draft 呼叫者需持有鎖
func (w *Workbench) draft(userID string) *Draft {
	d, ok := w.drafts[userID]
	if !ok {
		d = &Draft{Ingredients: []string{}}
		w.drafts[userID] = d
	}
	return d
}
