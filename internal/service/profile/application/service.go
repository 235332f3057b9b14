// internal/service/profile/application/service.go
package application

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/logger"
	"verdant/internal/service/profile/domain"
)

const topListingsLimit = 10

// UpdateUserCommand 个人档案的部分更新，nil 字段不改。
type UpdateUserCommand struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Avatar *string `json:"avatar"`
}

// ProfileService 商家主页与个人档案。
type ProfileService struct {
	businesses domain.BusinessRepository
	users      domain.UserRepository
	ratings    domain.RatingSource
	tracer     trace.Tracer
}

func NewProfileService(businesses domain.BusinessRepository, users domain.UserRepository, ratings domain.RatingSource, tracer trace.Tracer) *ProfileService {
	return &ProfileService{businesses: businesses, users: users, ratings: ratings, tracer: tracer}
}

// BusinessProfile 聚合商家主页: 档案、库存量、评分、橱窗。
// 评分和橱窗是锦上添花，查询失败不影响主页本身。
func (s *ProfileService) BusinessProfile(ctx context.Context, businessID string) (*domain.BusinessProfile, error) {
	ctx, span := s.tracer.Start(ctx, "ProfileService.BusinessProfile")
	defer span.End()
	span.SetAttributes(attribute.String("business.id", businessID))

	business, err := s.businesses.FindBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	count, err := s.businesses.CountActiveInventory(ctx, businessID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count inventory")
	}

	profile := &domain.BusinessProfile{
		Business:       business,
		InventoryCount: count,
	}

	if ratings, err := s.ratings.ListRatings(ctx, "seller", businessID); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("business_id", businessID).Msg("failed to load seller ratings")
	} else {
		profile.ReviewCount = len(ratings)
		profile.AverageRating = averageRating(ratings)
	}

	if listings, err := s.businesses.TopListings(ctx, businessID, topListingsLimit); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("business_id", businessID).Msg("failed to load top listings")
	} else {
		profile.TopListings = listings
	}

	return profile, nil
}

// UserProfile 读取个人档案。
func (s *ProfileService) UserProfile(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "ProfileService.UserProfile")
	defer span.End()

	return s.users.FindUser(ctx, userID)
}

// UpdateUserProfile 更新个人档案，只改传入的字段。
func (s *ProfileService) UpdateUserProfile(ctx context.Context, userID string, cmd UpdateUserCommand) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "ProfileService.UpdateUserProfile")
	defer span.End()

	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		user.Name = *cmd.Name
	}
	if cmd.Phone != nil {
		user.Phone = *cmd.Phone
	}
	if cmd.Avatar != nil {
		user.Avatar = *cmd.Avatar
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to save user")
	}
	return user, nil
}

func averageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*10) / 10
}
