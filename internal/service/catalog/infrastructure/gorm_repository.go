// internal/service/catalog/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"verdant/internal/service/catalog/domain"
)

// GormProductRepository 基于 MySQL 的商品仓储。
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) ListActive(ctx context.Context, filter domain.ListFilter) ([]*domain.Product, error) {
	query := r.db.WithContext(ctx).Where("status = ?", domain.StatusActive)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.SellerType != "" {
		query = query.Where("seller_type = ?", filter.SellerType)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	var models []*ProductModel
	if err := query.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	products := make([]*domain.Product, 0, len(models))
	for _, m := range models {
		products = append(products, toDomainProduct(m))
	}
	return products, nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find product")
	}
	return toDomainProduct(&model), nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(toProductModel(product)).Error
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(toProductModel(product)).Error
}

// GormWishlistRepository 收藏仓储。
type GormWishlistRepository struct {
	db *gorm.DB
}

func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

func (r *GormWishlistRepository) ListWishedProductIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&WishlistModel{}).
		Where("user_id = ?", userID).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list wishlist")
	}
	return ids, nil
}
