package client

import (
	"context"
	"net/http"

	"fridgechef/internal/pkg/common"
)

// GenerateRecipe 請後端以 AI 生成食譜
func (c *Client) GenerateRecipe(ctx context.Context, req common.GenerateRecipeRequest) (*common.GenerateRecipeResponse, error) {
	var resp common.GenerateRecipeResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/chef/generate",
		body:     req,
		auth:     true,
		fallback: "Recipe generation failed",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveRecipe 保存食譜
func (c *Client) SaveRecipe(ctx context.Context, req common.SaveRecipeRequest) (*common.Recipe, error) {
	var recipe common.Recipe
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/recipes",
		body:     req,
		auth:     true,
		fallback: "Failed to save recipe",
	}, &recipe)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// GetRecipes 取得食譜列表，後端回傳 null 時為空列表
func (c *Client) GetRecipes(ctx context.Context, filter common.RecipeFilter) ([]common.Recipe, error) {
	var recipes []common.Recipe
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/recipes",
		query:    filter.Query(),
		auth:     true,
		fallback: "Failed to fetch recipes",
	}, &recipes)
	if err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []common.Recipe{}
	}
	return recipes, nil
}

// DeleteRecipe 刪除食譜
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method:     http.MethodDelete,
		path:       "/recipes/{id}",
		pathParams: map[string]string{"id": id},
		auth:       true,
		fallback:   "Failed to delete recipe",
	}, nil)
}

// ToggleShareRecipe 切換公開分享狀態，回傳更新後的食譜
func (c *Client) ToggleShareRecipe(ctx context.Context, id string) (*common.Recipe, error) {
	var recipe common.Recipe
	err := c.do(ctx, call{
		method:     http.MethodPost,
		path:       "/recipes/{id}/share",
		pathParams: map[string]string{"id": id},
		auth:       true,
		fallback:   "Failed to update share settings",
	}, &recipe)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// GetPublicRecipe 以分享 token 取得公開食譜，不需登入
func (c *Client) GetPublicRecipe(ctx context.Context, token string) (*common.Recipe, error) {
	var recipe common.Recipe
	err := c.do(ctx, call{
		method:     http.MethodGet,
		path:       "/recipes/share/{token}",
		pathParams: map[string]string{"token": token},
		fallback:   "Recipe not found",
	}, &recipe)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
