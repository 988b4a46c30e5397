package query

import "context"

// Mutation 一次性的寫入操作，不進快取。
// Validate 在發出請求前執行；失敗與請求錯誤一樣交給 OnError。
type Mutation[V, R any] struct {
	Validate  func(V) error
	Fn        func(ctx context.Context, v V) (R, error)
	OnSuccess func(ctx context.Context, result R, v V)
	OnError   func(ctx context.Context, err error, v V)
}

// Run 執行寫入
func (m Mutation[V, R]) Run(ctx context.Context, v V) (R, error) {
	var zero R

	if m.Validate != nil {
		if err := m.Validate(v); err != nil {
			if m.OnError != nil {
				m.OnError(ctx, err, v)
			}
			return zero, err
		}
	}

	result, err := m.Fn(ctx, v)
	if err != nil {
		if m.OnError != nil {
			m.OnError(ctx, err, v)
		}
		return zero, err
	}

	if m.OnSuccess != nil {
		m.OnSuccess(ctx, result, v)
	}
	return result, nil
}
