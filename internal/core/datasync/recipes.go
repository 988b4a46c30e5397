package datasync

import (
	"context"
	"strings"

	"fridgechef/internal/core/query"
	"fridgechef/internal/pkg/common"
)

// Recipes 食譜列表，鍵為 ["recipes", <filter>]（網頁請求另加 session 前綴）
func (s *Service) Recipes(ctx context.Context, filter common.RecipeFilter) ([]common.Recipe, error) {
	return query.Fetch(ctx, s.cache, query.Query[[]common.Recipe]{
		Key: scoped(ctx, query.Key{RecipesKey[0], filter.Key()}),
		Fn: func(ctx context.Context) ([]common.Recipe, error) {
			return s.api.GetRecipes(ctx, filter)
		},
	})
}

// PublicRecipe 公開分享的食譜；token 為空時停用，失敗不重試
func (s *Service) PublicRecipe(ctx context.Context, token string) (*common.Recipe, error) {
	return query.Fetch(ctx, s.cache, query.Query[*common.Recipe]{
		Key:      query.Key{PublicRecipeKey[0], token},
		Disabled: token == "",
		NoRetry:  true,
		Fn: func(ctx context.Context) (*common.Recipe, error) {
			return s.api.GetPublicRecipe(ctx, token)
		},
	})
}

// DeleteRecipe 刪除食譜
func (s *Service) DeleteRecipe(ctx context.Context, id string) error {
	_, err := query.Mutation[string, struct{}]{
		Fn: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, s.api.DeleteRecipe(ctx, id)
		},
		OnSuccess: invalidate[struct{}, string](s, RecipesKey, MsgRecipeDeleted),
		OnError:   failWith[string](s, MsgRecipeDeleteFailed),
	}.Run(ctx, id)
	return err
}

// ToggleShareRecipe 切換分享狀態；成功不顯示訊息，由畫面顯示分享連結
func (s *Service) ToggleShareRecipe(ctx context.Context, id string) (*common.Recipe, error) {
	return query.Mutation[string, *common.Recipe]{
		Fn:        s.api.ToggleShareRecipe,
		OnSuccess: invalidate[*common.Recipe, string](s, RecipesKey, ""),
		OnError:   failWith[string](s, MsgShareFailed),
	}.Run(ctx, id)
}

// GenerateRecipe 以食材生成草稿，不進快取。
// 食材會先去除空白與重複；清單為空時不發出請求。
func (s *Service) GenerateRecipe(ctx context.Context, req common.GenerateRecipeRequest) (*common.GeneratedRecipe, error) {
	req.Ingredients = common.NormalizeNames(req.Ingredients)
	req.Preferences = strings.TrimSpace(req.Preferences)

	return query.Mutation[common.GenerateRecipeRequest, *common.GeneratedRecipe]{
		Validate: func(req common.GenerateRecipeRequest) error {
			if len(req.Ingredients) == 0 {
				return common.NewValidationError(MsgNoIngredients)
			}
			return nil
		},
		Fn: func(ctx context.Context, req common.GenerateRecipeRequest) (*common.GeneratedRecipe, error) {
			resp, err := s.api.GenerateRecipe(ctx, req)
			if err != nil {
				return nil, err
			}
			return &common.GeneratedRecipe{
				GenerateRecipeResponse: *resp,
				Ingredients:            req.Ingredients,
			}, nil
		},
		OnSuccess: func(ctx context.Context, _ *common.GeneratedRecipe, _ common.GenerateRecipeRequest) {
			s.Notifications(ctx).Success(MsgRecipeGenerated)
		},
		OnError: failWith[common.GenerateRecipeRequest](s, MsgGenerateFailed),
	}.Run(ctx, req)
}

// SaveRecipe 保存草稿
func (s *Service) SaveRecipe(ctx context.Context, req common.SaveRecipeRequest) (*common.Recipe, error) {
	return query.Mutation[common.SaveRecipeRequest, *common.Recipe]{
		Validate: func(req common.SaveRecipeRequest) error {
			if strings.TrimSpace(req.Title) == "" {
				return common.NewValidationError("Recipe title is required")
			}
			return nil
		},
		Fn:        s.api.SaveRecipe,
		OnSuccess: invalidate[*common.Recipe, common.SaveRecipeRequest](s, RecipesKey, MsgRecipeSaved),
		OnError:   failWith[common.SaveRecipeRequest](s, MsgRecipeSaveFailed),
	}.Run(ctx, req)
}
