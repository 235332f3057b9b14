// internal/service/profile/domain/repository.go
package domain

import "context"

// BusinessRepository 商家档案及其橱窗数据。
type BusinessRepository interface {
	FindBusiness(ctx context.Context, businessID string) (*Business, error)
	CountActiveInventory(ctx context.Context, businessID string) (int64, error)
	// TopListings 按价格降序返回最多 limit 条在售库存。
	TopListings(ctx context.Context, businessID string, limit int) ([]*Listing, error)
}

// UserRepository 个人用户档案。
type UserRepository interface {
	FindUser(ctx context.Context, userID string) (*User, error)
	SaveUser(ctx context.Context, user *User) error
}

// RatingSource 从评价侧读取目标的评分列表。
type RatingSource interface {
	ListRatings(ctx context.Context, targetType, targetID string) ([]int, error)
}
