package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"verdant/internal/service/review/domain"
)

// fakeReviewRepo 内存评价仓储。
type fakeReviewRepo struct {
	reviews map[string]*domain.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*domain.Review)}
}

func (f *fakeReviewRepo) HasUserReviewed(ctx context.Context, targetType, targetID, userID string) (bool, error) {
	for _, r := range f.reviews {
		if r.TargetType == targetType && r.TargetID == targetID && r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeReviewRepo) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	return r, nil
}

func (f *fakeReviewRepo) ListByTarget(ctx context.Context, targetType, targetID string) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, r := range f.reviews {
		if r.TargetType == targetType && r.TargetID == targetID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) Delete(ctx context.Context, id string) error {
	delete(f.reviews, id)
	return nil
}

type fakeUserDirectory struct {
	names map[string]string
}

func (f *fakeUserDirectory) DisplayName(ctx context.Context, userID string) (string, error) {
	return f.names[userID], nil
}

type fakeRatingStore struct {
	average float64
	count   int
	calls   int
}

func (f *fakeRatingStore) UpdateRating(ctx context.Context, targetType, targetID string, average float64, count int) error {
	f.average = average
	f.count = count
	f.calls++
	return nil
}

func newReviewService(repo *fakeReviewRepo, users *fakeUserDirectory, ratings *fakeRatingStore) *ReviewService {
	if users == nil {
		users = &fakeUserDirectory{}
	}
	s := NewReviewService(repo, users, ratings, otel.Tracer("test"))
	s.now = func() time.Time { return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC) }
	return s
}

func submit(userID string, rating int) SubmitReviewCommand {
	return SubmitReviewCommand{
		TargetType: domain.TargetSeller,
		TargetID:   "seller-1",
		UserID:     userID,
		Rating:     rating,
		Text:       "great plants",
	}
}

func TestSubmit_StoresReviewAndUpdatesRating(t *testing.T) {
	repo := newFakeReviewRepo()
	ratings := &fakeRatingStore{}
	users := &fakeUserDirectory{names: map[string]string{"u1": "Alice"}}
	svc := newReviewService(repo, users, ratings)

	review, err := svc.Submit(context.Background(), submit("u1", 4))
	require.NoError(t, err)
	assert.Equal(t, "Alice", review.UserName)
	assert.Equal(t, 1, ratings.calls)
	assert.Equal(t, 4.0, ratings.average)
	assert.Equal(t, 1, ratings.count)
}

func TestSubmit_FallsBackToDefaultUserName(t *testing.T) {
	svc := newReviewService(newFakeReviewRepo(), &fakeUserDirectory{}, &fakeRatingStore{})

	review, err := svc.Submit(context.Background(), submit("unknown", 5))
	require.NoError(t, err)
	assert.Equal(t, "User", review.UserName)
}

func TestSubmit_RejectsDuplicateAndInvalidInput(t *testing.T) {
	svc := newReviewService(newFakeReviewRepo(), nil, &fakeRatingStore{})

	_, err := svc.Submit(context.Background(), submit("u1", 4))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), submit("u1", 5))
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)

	_, err = svc.Submit(context.Background(), submit("u2", 6))
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	_, err = svc.Submit(context.Background(), submit("u2", 0))
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	bad := submit("u2", 3)
	bad.TargetType = "planet"
	_, err = svc.Submit(context.Background(), bad)
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)
}

func TestList_AverageIsRoundedToOneDecimal(t *testing.T) {
	repo := newFakeReviewRepo()
	ratings := &fakeRatingStore{}
	svc := newReviewService(repo, nil, ratings)

	_, err := svc.Submit(context.Background(), submit("u1", 4))
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), submit("u2", 3))
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), submit("u3", 3))
	require.NoError(t, err)

	list, err := svc.List(context.Background(), domain.TargetSeller, "seller-1", "u2")
	require.NoError(t, err)
	assert.Equal(t, 3.3, list.AverageRating) // 10/3 -> 3.3
	assert.Equal(t, 3, list.Count)

	own := 0
	for _, r := range list.Reviews {
		if r.IsOwnReview {
			own++
			assert.Equal(t, "u2", r.UserID)
		}
	}
	assert.Equal(t, 1, own)
}

func TestDelete_OnlyOwnerAndRecomputesRating(t *testing.T) {
	repo := newFakeReviewRepo()
	ratings := &fakeRatingStore{}
	svc := newReviewService(repo, nil, ratings)

	review, err := svc.Submit(context.Background(), submit("u1", 5))
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), submit("u2", 1))
	require.NoError(t, err)

	err = svc.Delete(context.Background(), review.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrNotReviewOwner)

	require.NoError(t, svc.Delete(context.Background(), review.ID, "u1"))
	assert.Equal(t, 1.0, ratings.average)
	assert.Equal(t, 1, ratings.count)

	err = svc.Delete(context.Background(), "missing", "u1")
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
}
