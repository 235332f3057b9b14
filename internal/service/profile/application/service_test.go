package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"verdant/internal/service/profile/domain"
)

type fakeBusinessRepo struct {
	business *domain.Business
	count    int64
	listings []*domain.Listing
}

func (f *fakeBusinessRepo) FindBusiness(ctx context.Context, businessID string) (*domain.Business, error) {
	if f.business == nil || f.business.ID != businessID {
		return nil, domain.ErrBusinessNotFound
	}
	return f.business, nil
}

func (f *fakeBusinessRepo) CountActiveInventory(ctx context.Context, businessID string) (int64, error) {
	return f.count, nil
}

func (f *fakeBusinessRepo) TopListings(ctx context.Context, businessID string, limit int) ([]*domain.Listing, error) {
	if len(f.listings) > limit {
		return f.listings[:limit], nil
	}
	return f.listings, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) FindUser(ctx context.Context, userID string) (*domain.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) SaveUser(ctx context.Context, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

type fakeRatingSource struct {
	ratings []int
	err     error
}

func (f *fakeRatingSource) ListRatings(ctx context.Context, targetType, targetID string) ([]int, error) {
	return f.ratings, f.err
}

func TestBusinessProfile_ComposesView(t *testing.T) {
	businesses := &fakeBusinessRepo{
		business: &domain.Business{ID: "b1", Name: "Green Thumb", JoinedAt: time.Now()},
		count:    12,
		listings: []*domain.Listing{{ID: "i1", Title: "Monstera", Price: 40}},
	}
	ratings := &fakeRatingSource{ratings: []int{5, 4, 4}}

	svc := NewProfileService(businesses, &fakeUserRepo{}, ratings, otel.Tracer("test"))
	profile, err := svc.BusinessProfile(context.Background(), "b1")
	require.NoError(t, err)

	assert.Equal(t, "Green Thumb", profile.Business.Name)
	assert.Equal(t, int64(12), profile.InventoryCount)
	assert.Equal(t, 4.3, profile.AverageRating)
	assert.Equal(t, 3, profile.ReviewCount)
	require.Len(t, profile.TopListings, 1)
	assert.Equal(t, "Monstera", profile.TopListings[0].Title)
}

func TestBusinessProfile_RatingFailureIsNotFatal(t *testing.T) {
	businesses := &fakeBusinessRepo{
		business: &domain.Business{ID: "b1", Name: "Green Thumb"},
	}
	ratings := &fakeRatingSource{err: errors.New("reviews table gone")}

	svc := NewProfileService(businesses, &fakeUserRepo{}, ratings, otel.Tracer("test"))
	profile, err := svc.BusinessProfile(context.Background(), "b1")
	require.NoError(t, err)
	assert.Zero(t, profile.AverageRating)
	assert.Zero(t, profile.ReviewCount)
}

func TestBusinessProfile_UnknownBusiness(t *testing.T) {
	svc := NewProfileService(&fakeBusinessRepo{}, &fakeUserRepo{}, &fakeRatingSource{}, otel.Tracer("test"))
	_, err := svc.BusinessProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrBusinessNotFound)
}

func TestUpdateUserProfile_PartialUpdate(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Name: "Alice", Phone: "123"},
	}}
	svc := NewProfileService(&fakeBusinessRepo{}, users, &fakeRatingSource{}, otel.Tracer("test"))

	newName := "Alice B."
	user, err := svc.UpdateUserProfile(context.Background(), "u1", UpdateUserCommand{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", user.Name)
	assert.Equal(t, "123", user.Phone, "untouched fields keep their value")

	_, err = svc.UpdateUserProfile(context.Background(), "missing", UpdateUserCommand{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
