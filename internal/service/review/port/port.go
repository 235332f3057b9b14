// internal/service/review/port/port.go
package port

import "context"

// UserDirectory 查询用户展示名，用于评价落库时冗余存储。
type UserDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// RatingStore 把评分汇总回写到被评目标(卖家档案或商品)。
type RatingStore interface {
	UpdateRating(ctx context.Context, targetType, targetID string, average float64, count int) error
}
