// Package recipe 管理首頁的食材清單、AI 生成草稿與保存。
package recipe

import (
	"context"
	"errors"

	"fridgechef/internal/core/datasync"
	"fridgechef/internal/pkg/common"
)

// ErrNoDraft 沒有可保存的草稿
var ErrNoDraft = errors.New("recipe: no generated recipe to save")

// Service 首頁食譜流程
type Service struct {
	sync     *datasync.Service
	bench    *Workbench
	language string
}

// NewService 創建首頁食譜服務；language 為空時不送出語言
func NewService(sync *datasync.Service, bench *Workbench, language string) *Service {
	return &Service{
		sync:     sync,
		bench:    bench,
		language: language,
	}
}

// Workbench 回傳草稿區
func (s *Service) Workbench() *Workbench {
	return s.bench
}

// Generate 以目前的食材與偏好生成草稿，成功後取代舊草稿
func (s *Service) Generate(ctx context.Context, userID string) (*common.GeneratedRecipe, error) {
	d := s.bench.Get(userID)
	generated, err := s.sync.GenerateRecipe(ctx, common.GenerateRecipeRequest{
		Ingredients: d.Ingredients,
		Preferences: d.Preferences,
		Language:    s.language,
	})
	if err != nil {
		return nil, err
	}
	s.bench.SetRecipe(userID, generated)
	return generated, nil
}

// Save 保存目前的草稿，草稿保留在畫面上
func (s *Service) Save(ctx context.Context, userID string) (*common.Recipe, error) {
	d := s.bench.Get(userID)
	if d.Recipe == nil {
		return nil, ErrNoDraft
	}
	return s.sync.SaveRecipe(ctx, d.Recipe.SaveRequest())
}
