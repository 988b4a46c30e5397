package datasync

import (
	"context"
	"time"

	"fridgechef/internal/core/query"
	"fridgechef/internal/pkg/common"
)

const dateLayout = "2006-01-02"

// MealPlan 日期區間內的餐點計畫；兩端日期都有值才會請求
func (s *Service) MealPlan(ctx context.Context, startDate, endDate string) ([]common.MealPlanEntry, error) {
	return query.Fetch(ctx, s.cache, query.Query[[]common.MealPlanEntry]{
		Key:      scoped(ctx, query.Key{MealPlanKey[0], startDate, endDate}),
		Disabled: startDate == "" || endDate == "",
		Fn: func(ctx context.Context) ([]common.MealPlanEntry, error) {
			return s.api.GetMealPlan(ctx, startDate, endDate)
		},
	})
}

// AddToMealPlan 將食譜排入某天某餐
func (s *Service) AddToMealPlan(ctx context.Context, recipeID, date, mealType string) (*common.MealPlanEntry, error) {
	req := common.AddMealPlanRequest{RecipeID: recipeID, Date: date}
	parsed, mealErr := common.ParseMealType(mealType)
	req.MealType = parsed

	return query.Mutation[common.AddMealPlanRequest, *common.MealPlanEntry]{
		Validate: func(req common.AddMealPlanRequest) error {
			if req.RecipeID == "" {
				return common.NewValidationError(MsgMealRecipeRequired)
			}
			if _, err := time.Parse(dateLayout, req.Date); err != nil {
				return common.NewValidationError("Invalid date")
			}
			return mealErr
		},
		Fn:        s.api.AddToMealPlan,
		OnSuccess: invalidate[*common.MealPlanEntry, common.AddMealPlanRequest](s, MealPlanKey, MsgMealAdded),
		OnError:   failWith[common.AddMealPlanRequest](s, MsgMealAddFailed),
	}.Run(ctx, req)
}

// DeleteMealPlan 移除餐點計畫項目
func (s *Service) DeleteMealPlan(ctx context.Context, id string) error {
	_, err := query.Mutation[string, struct{}]{
		Fn: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, s.api.DeleteMealPlan(ctx, id)
		},
		OnSuccess: invalidate[struct{}, string](s, MealPlanKey, MsgMealRemoved),
		OnError:   failWith[string](s, MsgMealRemoveFailed),
	}.Run(ctx, id)
	return err
}
