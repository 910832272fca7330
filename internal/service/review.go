package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Shorabul/Homigo-Server/internal/cache"
	"github.com/Shorabul/Homigo-Server/internal/domain"
	"github.com/Shorabul/Homigo-Server/internal/event"
	"github.com/Shorabul/Homigo-Server/internal/repository"
	apperrors "github.com/Shorabul/Homigo-Server/pkg/errors"
)

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	repo     repository.ReviewRepository
	cache    *cache.CatalogCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, cache *cache.CatalogCache, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	UserName string
	Email    string
	PhotoURL string
	Rating   int
	Comment  string
}

// SubmitReview appends a review to a service and recomputes the service's
// ratings count and average over the full review set. Both writes happen in
// one repository transaction.
func (s *ReviewService) SubmitReview(ctx context.Context, serviceID string, input SubmitReviewInput) (*domain.Review, error) {
	if serviceID == "" {
		return nil, apperrors.InvalidInput("service_id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be an integer between 1 and 5")
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		ServiceID: serviceID,
		UserName:  input.UserName,
		Email:     input.Email,
		PhotoURL:  input.PhotoURL,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}

	// Ratings changed, so the cached top-rated ordering may be stale.
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "catalog cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishReviewSubmitted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.submitted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("service_id", review.ServiceID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListServiceReviews returns a service's reviews in insertion order.
func (s *ReviewService) ListServiceReviews(ctx context.Context, serviceID string) ([]domain.Review, error) {
	reviews, err := s.repo.ListByService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list service reviews: %w", err)
	}
	return reviews, nil
}

// ListAllReviews returns the flattened review summaries across all services.
func (s *ReviewService) ListAllReviews(ctx context.Context) ([]domain.ReviewSummary, error) {
	summaries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all reviews: %w", err)
	}
	return summaries, nil
}
