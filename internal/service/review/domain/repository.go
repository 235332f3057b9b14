// internal/service/review/domain/repository.go
package domain

import "context"

// ReviewRepository 评价仓储。
type ReviewRepository interface {
	HasUserReviewed(ctx context.Context, targetType, targetID, userID string) (bool, error)
	Create(ctx context.Context, review *Review) error
	FindByID(ctx context.Context, id string) (*Review, error)
	// ListByTarget 按时间倒序返回目标的全部评价。
	ListByTarget(ctx context.Context, targetType, targetID string) ([]*Review, error)
	Delete(ctx context.Context, id string) error
}
