// internal/service/review/infrastructure/rating_store.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"verdant/internal/service/review/domain"
)

// GormRatingStore 把评分汇总回写到被评目标所在的表:
// 卖家 -> business_users，商品 -> marketplace_plants。
type GormRatingStore struct {
	db *gorm.DB
}

func NewGormRatingStore(db *gorm.DB) *GormRatingStore {
	return &GormRatingStore{db: db}
}

func (s *GormRatingStore) UpdateRating(ctx context.Context, targetType, targetID string, average float64, count int) error {
	var table string
	switch targetType {
	case domain.TargetSeller:
		table = "business_users"
	case domain.TargetProduct:
		table = "marketplace_plants"
	default:
		return domain.ErrInvalidTarget
	}

	return s.db.WithContext(ctx).
		Table(table).
		Where("id = ?", targetID).
		Updates(map[string]interface{}{
			"rating":       average,
			"rating_count": count,
		}).Error
}

// GormUserDirectory 从 users 表读展示名。
type GormUserDirectory struct {
	db *gorm.DB
}

func NewGormUserDirectory(db *gorm.DB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

func (d *GormUserDirectory) DisplayName(ctx context.Context, userID string) (string, error) {
	var name string
	err := d.db.WithContext(ctx).
		Table("users").
		Where("id = ?", userID).
		Pluck("name", &name).Error
	if err != nil {
		return "", errors.Wrap(err, "failed to look up user name")
	}
	return name, nil
}
