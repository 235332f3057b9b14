// internal/service/catalog/domain/repository.go
package domain

import "context"

// ListFilter 是仓储层可以直接下推到 SQL 的过滤条件。
type ListFilter struct {
	Category   string
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	SellerType string
}

// ProductRepository 商品仓储。
type ProductRepository interface {
	ListActive(ctx context.Context, filter ListFilter) ([]*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
}

// WishlistRepository 查询用户收藏，用于给列表打 wished 标。
type WishlistRepository interface {
	ListWishedProductIDs(ctx context.Context, userID string) ([]string, error)
}
