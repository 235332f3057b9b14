// internal/service/review/domain/review.go
package domain

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidTarget   = errors.New("review target must be a seller or a product")
	ErrEmptyReviewText = errors.New("review text must not be empty")
	ErrAlreadyReviewed = errors.New("user has already reviewed this target")
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotReviewOwner  = errors.New("user does not own this review")
)

// 可评价的目标类型。
const (
	TargetSeller  = "seller"
	TargetProduct = "product"
)

// Review 一条评价。一个用户对同一目标只能评一次。
type Review struct {
	ID         string    `json:"id"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`

	// 视图字段，按请求者计算。
	IsOwnReview bool `json:"isOwnReview"`
}

// NewReview 构造并校验一条评价。
func NewReview(id, targetType, targetID, userID, userName, text string, rating int, at time.Time) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if targetType != TargetSeller && targetType != TargetProduct {
		return nil, ErrInvalidTarget
	}
	if targetID == "" {
		return nil, ErrInvalidTarget
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyReviewText
	}
	return &Review{
		ID:         id,
		TargetType: targetType,
		TargetID:   targetID,
		UserID:     userID,
		UserName:   userName,
		Rating:     rating,
		Text:       text,
		CreatedAt:  at,
	}, nil
}

// AverageRating 计算均分，保留一位小数。无评价时为 0。
func AverageRating(reviews []*Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return math.Round(avg*10) / 10
}
