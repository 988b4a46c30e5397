package datasync

import (
	"context"
	"strings"

	"fridgechef/internal/core/query"
	"fridgechef/internal/pkg/common"
)

// Pantry 食材庫存，鍵為 ["pantry"]
func (s *Service) Pantry(ctx context.Context) ([]common.PantryItem, error) {
	return query.Fetch(ctx, s.cache, query.Query[[]common.PantryItem]{
		Key: scoped(ctx, PantryKey),
		Fn:  s.api.GetPantryItems,
	})
}

// AddPantryItem 新增食材；名稱不可為空，單位空白時為 unit
func (s *Service) AddPantryItem(ctx context.Context, name, quantity, unit string) (*common.PantryItem, error) {
	req := common.AddPantryItemRequest{
		Name:     strings.TrimSpace(name),
		Quantity: strings.TrimSpace(quantity),
	}
	parsed, unitErr := common.ParseUnit(unit)
	req.Unit = parsed

	return query.Mutation[common.AddPantryItemRequest, *common.PantryItem]{
		Validate: func(req common.AddPantryItemRequest) error {
			if req.Name == "" {
				return common.NewValidationError(MsgPantryNameRequired)
			}
			return unitErr
		},
		Fn:        s.api.AddPantryItem,
		OnSuccess: invalidate[*common.PantryItem, common.AddPantryItemRequest](s, PantryKey, MsgPantryAdded),
		OnError:   failWith[common.AddPantryItemRequest](s, MsgPantryAddFailed),
	}.Run(ctx, req)
}

// DeletePantryItem 刪除食材
func (s *Service) DeletePantryItem(ctx context.Context, id string) error {
	_, err := query.Mutation[string, struct{}]{
		Fn: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, s.api.DeletePantryItem(ctx, id)
		},
		OnSuccess: invalidate[struct{}, string](s, PantryKey, MsgPantryRemoved),
		OnError:   failWith[string](s, MsgPantryRemoveFailed),
	}.Run(ctx, id)
	return err
}
