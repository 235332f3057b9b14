// internal/service/review/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/logger"
	"verdant/internal/service/review/domain"
	"verdant/internal/service/review/port"
)

const fallbackUserName = "User"

// SubmitReviewCommand 提交评价的输入。
type SubmitReviewCommand struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	UserID     string `json:"userId"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
}

// ReviewList 目标的评价列表和汇总。
type ReviewList struct {
	Reviews       []*domain.Review `json:"reviews"`
	AverageRating float64          `json:"averageRating"`
	Count         int              `json:"count"`
}

// ReviewService 评价应用服务。
type ReviewService struct {
	reviews domain.ReviewRepository
	users   port.UserDirectory
	ratings port.RatingStore
	tracer  trace.Tracer

	now func() time.Time
}

func NewReviewService(reviews domain.ReviewRepository, users port.UserDirectory, ratings port.RatingStore, tracer trace.Tracer) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		users:   users,
		ratings: ratings,
		tracer:  tracer,
		now:     time.Now,
	}
}

// Submit 提交评价。重复评价报 ErrAlreadyReviewed。
func (s *ReviewService) Submit(ctx context.Context, cmd SubmitReviewCommand) (*domain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("review.target_type", cmd.TargetType),
		attribute.String("review.target_id", cmd.TargetID),
	)

	reviewed, err := s.reviews.HasUserReviewed(ctx, cmd.TargetType, cmd.TargetID, cmd.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check existing review")
	}
	if reviewed {
		return nil, domain.ErrAlreadyReviewed
	}

	userName, err := s.users.DisplayName(ctx, cmd.UserID)
	if err != nil || userName == "" {
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("user_id", cmd.UserID).Msg("display name lookup failed")
		}
		userName = fallbackUserName
	}

	review, err := domain.NewReview(uuid.New().String(), cmd.TargetType, cmd.TargetID, cmd.UserID, userName, cmd.Text, cmd.Rating, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, errors.Wrap(err, "failed to save review")
	}

	s.refreshRating(ctx, cmd.TargetType, cmd.TargetID)

	logger.Ctx(ctx).Info().
		Str("review_id", review.ID).
		Str("target_id", cmd.TargetID).
		Int("rating", cmd.Rating).
		Msg("review submitted")
	return review, nil
}

// List 返回目标的评价，按请求者标出自己的那条。
func (s *ReviewService) List(ctx context.Context, targetType, targetID, currentUserID string) (*ReviewList, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.List")
	defer span.End()

	if targetType != domain.TargetSeller && targetType != domain.TargetProduct {
		return nil, domain.ErrInvalidTarget
	}

	reviews, err := s.reviews.ListByTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reviews")
	}
	for _, r := range reviews {
		r.IsOwnReview = currentUserID != "" && r.UserID == currentUserID
	}

	return &ReviewList{
		Reviews:       reviews,
		AverageRating: domain.AverageRating(reviews),
		Count:         len(reviews),
	}, nil
}

// Delete 删除自己的评价并重算目标评分。
func (s *ReviewService) Delete(ctx context.Context, reviewID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Delete")
	defer span.End()

	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return domain.ErrNotReviewOwner
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return errors.Wrap(err, "failed to delete review")
	}

	s.refreshRating(ctx, review.TargetType, review.TargetID)
	return nil
}

// refreshRating 重算并回写目标评分，失败只记日志。
func (s *ReviewService) refreshRating(ctx context.Context, targetType, targetID string) {
	reviews, err := s.reviews.ListByTarget(ctx, targetType, targetID)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("target_id", targetID).Msg("failed to reload reviews for rating rollup")
		return
	}
	average := domain.AverageRating(reviews)
	if err := s.ratings.UpdateRating(ctx, targetType, targetID, average, len(reviews)); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("target_type", targetType).
			Str("target_id", targetID).
			Msg("failed to update target rating")
	}
}
