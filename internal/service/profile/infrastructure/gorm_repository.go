// internal/service/profile/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"verdant/internal/service/profile/domain"
)

// BusinessModel 对应 business_users 表。
type BusinessModel struct {
	ID          string `gorm:"primaryKey;size:64"`
	Name        string `gorm:"size:128"`
	Description string `gorm:"type:text"`
	City        string `gorm:"size:128"`
	Avatar      string `gorm:"size:512"`
	Rating      float64
	RatingCount int
	CreatedAt   time.Time
}

func (BusinessModel) TableName() string {
	return "business_users"
}

// UserModel 对应 users 表。
type UserModel struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:128"`
	Phone     string `gorm:"size:32"`
	Avatar    string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// InventoryListingModel 是商家库存表 inventory 的橱窗投影，
// 只映射主页需要的列。
type InventoryListingModel struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:255"`
	Price     float64
	Quantity  int
	Status    string `gorm:"size:16"`
	MainImage string `gorm:"size:512"`
}

func (InventoryListingModel) TableName() string {
	return "inventory"
}

// GormBusinessRepository 商家档案仓储。
type GormBusinessRepository struct {
	db *gorm.DB
}

func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

func (r *GormBusinessRepository) FindBusiness(ctx context.Context, businessID string) (*domain.Business, error) {
	var model BusinessModel
	err := r.db.WithContext(ctx).Where("id = ?", businessID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrBusinessNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find business")
	}
	return &domain.Business{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		City:        model.City,
		Avatar:      model.Avatar,
		JoinedAt:    model.CreatedAt,
	}, nil
}

func (r *GormBusinessRepository) CountActiveInventory(ctx context.Context, businessID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&InventoryListingModel{}).
		Where("business_id = ? AND status = ?", businessID, "active").
		Count(&count).Error
	return count, err
}

func (r *GormBusinessRepository) TopListings(ctx context.Context, businessID string, limit int) ([]*domain.Listing, error) {
	var models []*InventoryListingModel
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND status = ?", businessID, "active").
		Order("price DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list inventory")
	}

	listings := make([]*domain.Listing, 0, len(models))
	for _, m := range models {
		listings = append(listings, &domain.Listing{
			ID:        m.ID,
			Title:     m.Name,
			Price:     m.Price,
			Quantity:  m.Quantity,
			MainImage: m.MainImage,
		})
	}
	return listings, nil
}

// GormUserRepository 个人档案仓储。
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindUser(ctx context.Context, userID string) (*domain.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}
	return &domain.User{
		ID:       model.ID,
		Name:     model.Name,
		Phone:    model.Phone,
		Avatar:   model.Avatar,
		JoinedAt: model.CreatedAt,
	}, nil
}

func (r *GormUserRepository) SaveUser(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":   user.Name,
			"phone":  user.Phone,
			"avatar": user.Avatar,
		}).Error
}

// GormRatingSource 直接读 reviews 表的评分列。
type GormRatingSource struct {
	db *gorm.DB
}

func NewGormRatingSource(db *gorm.DB) *GormRatingSource {
	return &GormRatingSource{db: db}
}

func (r *GormRatingSource) ListRatings(ctx context.Context, targetType, targetID string) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).
		Table("reviews").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list ratings")
	}
	return ratings, nil
}
