package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Shorabul/Homigo-Server/internal/domain"
	apperrors "github.com/Shorabul/Homigo-Server/pkg/errors"
)

// --- Mock Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) ListByService(ctx context.Context, serviceID string) ([]domain.Review, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListAll(ctx context.Context) ([]domain.ReviewSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewSummary), args.Error(1)
}

// --- Test Helpers ---

func newTestReviewService(t *testing.T, repo *mockReviewRepository) (*ReviewService, *miniredis.Miniredis) {
	t.Helper()
	catalogCache, mr := newTestCache(t)
	svc := NewReviewService(repo, catalogCache, newTestProducer(), newTestLogger())
	return svc, mr
}

// --- Tests ---

func TestSubmitReview_Success(t *testing.T) {
	repo := new(mockReviewRepository)
	svc, _ := newTestReviewService(t, repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	review, err := svc.SubmitReview(ctx, "svc-1", SubmitReviewInput{
		UserName: "Jordan",
		Email:    "jordan@example.com",
		PhotoURL: "https://img.example.com/jordan.jpg",
		Rating:   5,
		Comment:  "Spotless work",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "svc-1", review.ServiceID)
	assert.Equal(t, 5, review.Rating)
	assert.NotZero(t, review.CreatedAt)

	repo.AssertExpectations(t)
}

func TestSubmitReview_RatingOutOfRange(t *testing.T) {
	repo := new(mockReviewRepository)
	svc, _ := newTestReviewService(t, repo)
	ctx := context.Background()

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.SubmitReview(ctx, "svc-1", SubmitReviewInput{
			UserName: "Jordan",
			Email:    "jordan@example.com",
			Rating:   rating,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "rating %d", rating)
	}

	repo.AssertNotCalled(t, "Create")
}

func TestSubmitReview_RequiresServiceID(t *testing.T) {
	repo := new(mockReviewRepository)
	svc, _ := newTestReviewService(t, repo)

	_, err := svc.SubmitReview(context.Background(), "", SubmitReviewInput{Rating: 4})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestSubmitReview_AbsentServiceIsNotFound(t *testing.T) {
	repo := new(mockReviewRepository)
	svc, _ := newTestReviewService(t, repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
		Return(apperrors.NotFound("service", "missing-id"))

	_, err := svc.SubmitReview(ctx, "missing-id", SubmitReviewInput{
		UserName: "Jordan",
		Email:    "jordan@example.com",
		Rating:   4,
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestSubmitReview_InvalidatesCatalogCache(t *testing.T) {
	repo := new(mockReviewRepository)
	svc, mr := newTestReviewService(t, repo)
	ctx := context.Background()

	// Ratings feed the top-rated ordering, so both hot lists must drop.
	require.NoError(t, mr.Set("catalog:top-rated", "[]"))
	require.NoError(t, mr.Set("catalog:banner", "[]"))

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	_, err := svc.SubmitReview(ctx, "svc-1", SubmitReviewInput{
		UserName: "Jordan",
		Email:    "jordan@example.com",
		Rating:   4,
	})

	require.NoError(t, err)
	assert.False(t, mr.Exists("catalog:top-rated"))
	assert.False(t, mr.Exists("catalog:banner"))
}

func TestListServiceReviews_InsertionOrder(t *testing.T) {
	repo := new(mockReviewRepository)
	svc, _ := newTestReviewService(t, repo)
	ctx := context.Background()

	fixture := []domain.Review{
		{ID: "rev-1", ServiceID: "svc-1", UserName: "Jordan", Rating: 5},
		{ID: "rev-2", ServiceID: "svc-1", UserName: "Sam", Rating: 3},
	}
	repo.On("ListByService", ctx, "svc-1").Return(fixture, nil)

	got, err := svc.ListServiceReviews(ctx, "svc-1")

	require.NoError(t, err)
	assert.Equal(t, fixture, got)
	repo.AssertExpectations(t)
}

func TestListAllReviews_FlattenedSummaries(t *testing.T) {
	repo := new(mockReviewRepository)
	svc, _ := newTestReviewService(t, repo)
	ctx := context.Background()

	fixture := []domain.ReviewSummary{
		{ServiceName: "Deep Cleaning", UserName: "Jordan", Rating: 5, Comment: "Spotless work"},
		{ServiceName: "Plumbing", UserName: "Sam", Rating: 3, Comment: "Fixed, eventually"},
	}
	repo.On("ListAll", ctx).Return(fixture, nil)

	got, err := svc.ListAllReviews(ctx)

	require.NoError(t, err)
	assert.Equal(t, fixture, got)
	repo.AssertExpectations(t)
}
