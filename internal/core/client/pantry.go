package client

import (
	"context"
	"net/http"

	"fridgechef/internal/pkg/common"
)

// GetPantryItems 取得食材庫存
func (c *Client) GetPantryItems(ctx context.Context) ([]common.PantryItem, error) {
	var items []common.PantryItem
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/pantry",
		auth:     true,
		fallback: "Failed to fetch pantry items",
	}, &items)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []common.PantryItem{}
	}
	return items, nil
}

// AddPantryItem 新增食材
func (c *Client) AddPantryItem(ctx context.Context, req common.AddPantryItemRequest) (*common.PantryItem, error) {
	var item common.PantryItem
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/pantry",
		body:     req,
		auth:     true,
		fallback: "Failed to add pantry item",
	}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeletePantryItem 刪除食材
func (c *Client) DeletePantryItem(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method:     http.MethodDelete,
		path:       "/pantry/{id}",
		pathParams: map[string]string{"id": id},
		auth:       true,
		fallback:   "Failed to delete pantry item",
	}, nil)
}
