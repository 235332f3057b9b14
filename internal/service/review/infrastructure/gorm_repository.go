// internal/service/review/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"verdant/internal/service/review/domain"
)

// ReviewModel 对应 reviews 表。
type ReviewModel struct {
	ID         string `gorm:"primaryKey;size:64"`
	TargetType string `gorm:"size:16;index:idx_review_target;index:idx_review_unique,unique"`
	TargetID   string `gorm:"size:64;index:idx_review_target;index:idx_review_unique,unique"`
	UserID     string `gorm:"size:64;index:idx_review_unique,unique"`
	UserName   string `gorm:"size:128"`
	Rating     int    `gorm:"not null"`
	Text       string `gorm:"type:text"`
	CreatedAt  time.Time
}

func (ReviewModel) TableName() string {
	return "reviews"
}

// GormReviewRepository 基于 MySQL 的评价仓储。
type GormReviewRepository struct {
	db *gorm.DB
}

func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) HasUserReviewed(ctx context.Context, targetType, targetID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ReviewModel{}).
		Where("target_type = ? AND target_id = ? AND user_id = ?", targetType, targetID, userID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check review existence")
	}
	return count > 0, nil
}

func (r *GormReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return r.db.WithContext(ctx).Create(&ReviewModel{
		ID:         review.ID,
		TargetType: review.TargetType,
		TargetID:   review.TargetID,
		UserID:     review.UserID,
		UserName:   review.UserName,
		Rating:     review.Rating,
		Text:       review.Text,
		CreatedAt:  review.CreatedAt,
	}).Error
}

func (r *GormReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	var model ReviewModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrReviewNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find review")
	}
	return toDomainReview(&model), nil
}

func (r *GormReviewRepository) ListByTarget(ctx context.Context, targetType, targetID string) ([]*domain.Review, error) {
	var models []*ReviewModel
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reviews")
	}

	reviews := make([]*domain.Review, 0, len(models))
	for _, m := range models {
		reviews = append(reviews, toDomainReview(m))
	}
	return reviews, nil
}

func (r *GormReviewRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&ReviewModel{}).Error
}

func toDomainReview(m *ReviewModel) *domain.Review {
	return &domain.Review{
		ID:         m.ID,
		TargetType: m.TargetType,
		TargetID:   m.TargetID,
		UserID:     m.UserID,
		UserName:   m.UserName,
		Rating:     m.Rating,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
	}
}
