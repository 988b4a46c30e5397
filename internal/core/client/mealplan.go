package client

import (
	"context"
	"net/http"
	"net/url"

	"fridgechef/internal/pkg/common"
)

// GetMealPlan 取得日期區間內的餐點計畫，日期格式 YYYY-MM-DD
func (c *Client) GetMealPlan(ctx context.Context, startDate, endDate string) ([]common.MealPlanEntry, error) {
	var entries []common.MealPlanEntry
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/meal-plans",
		query: url.Values{
			"start_date": {startDate},
			"end_date":   {endDate},
		},
		auth:     true,
		fallback: "Failed to fetch meal plan",
	}, &entries)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []common.MealPlanEntry{}
	}
	return entries, nil
}

// AddToMealPlan 將食譜排入某天某餐
func (c *Client) AddToMealPlan(ctx context.Context, req common.AddMealPlanRequest) (*common.MealPlanEntry, error) {
	var entry common.MealPlanEntry
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/meal-plans",
		body:     req,
		auth:     true,
		fallback: "Failed to add to meal plan",
	}, &entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteMealPlan 移除餐點計畫項目
func (c *Client) DeleteMealPlan(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method:     http.MethodDelete,
		path:       "/meal-plans/{id}",
		pathParams: map[string]string{"id": id},
		auth:       true,
		fallback:   "Failed to delete meal plan",
	}, nil)
}
