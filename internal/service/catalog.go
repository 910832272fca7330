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

// Hot-list size caps. Requests may ask for fewer but never more.
const (
	TopRatedLimit = 6
	BannerLimit   = 3
)

// CatalogService implements the business logic for catalog operations.
type CatalogService struct {
	repo     repository.ServiceRepository
	cache    *cache.CatalogCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.ServiceRepository, cache *cache.CatalogCache, producer *event.Producer, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// CreateServiceInput holds the parameters for publishing a catalog service.
type CreateServiceInput struct {
	ProviderEmail string
	Name          string
	Description   string
	Price         int64
	ImageURL      string
}

// ListServices returns services matching the given price filter.
func (s *CatalogService) ListServices(ctx context.Context, filter repository.ServiceFilter) ([]domain.Service, error) {
	if filter.MinPrice != nil && *filter.MinPrice < 0 {
		return nil, apperrors.InvalidInput("min_price must not be negative")
	}
	if filter.MaxPrice != nil && *filter.MaxPrice < 0 {
		return nil, apperrors.InvalidInput("max_price must not be negative")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, apperrors.InvalidInput("min_price must not exceed max_price")
	}

	services, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	return services, nil
}

// ListTopRated returns up to limit services ordered by review count. The
// full-size list is served through the Redis cache; a cache failure falls
// back to the repository.
func (s *CatalogService) ListTopRated(ctx context.Context, limit int) ([]domain.Service, error) {
	if limit <= 0 || limit > TopRatedLimit {
		limit = TopRatedLimit
	}

	cached, err := s.cache.GetTopRated(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "top-rated cache read failed",
			slog.String("error", err.Error()),
		)
	}
	if cached != nil {
		return clampServices(cached, limit), nil
	}

	services, err := s.repo.ListTopRated(ctx, TopRatedLimit)
	if err != nil {
		return nil, fmt.Errorf("list top-rated services: %w", err)
	}

	if err := s.cache.SetTopRated(ctx, services); err != nil {
		s.logger.WarnContext(ctx, "top-rated cache write failed",
			slog.String("error", err.Error()),
		)
	}

	return clampServices(services, limit), nil
}

// ListBanner returns up to limit banner projections, served through the
// Redis cache.
func (s *CatalogService) ListBanner(ctx context.Context, limit int) ([]domain.BannerItem, error) {
	if limit <= 0 || limit > BannerLimit {
		limit = BannerLimit
	}

	cached, err := s.cache.GetBanner(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "banner cache read failed",
			slog.String("error", err.Error()),
		)
	}
	if cached != nil {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	items, err := s.repo.ListBanner(ctx, BannerLimit)
	if err != nil {
		return nil, fmt.Errorf("list banner services: %w", err)
	}

	if err := s.cache.SetBanner(ctx, items); err != nil {
		s.logger.WarnContext(ctx, "banner cache write failed",
			slog.String("error", err.Error()),
		)
	}

	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// GetService retrieves a service by its ID.
func (s *CatalogService) GetService(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get service by id: %w", err)
	}
	return svc, nil
}

// CreateService publishes a new service to the catalog. Ratings start at
// zero with an undefined average.
func (s *CatalogService) CreateService(ctx context.Context, input CreateServiceInput) (*domain.Service, error) {
	if input.ProviderEmail == "" {
		return nil, apperrors.InvalidInput("provider_email is required")
	}
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	now := time.Now().UTC()
	svc := &domain.Service{
		ID:            uuid.New().String(),
		ProviderEmail: input.ProviderEmail,
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		ImageURL:      input.ImageURL,
		RatingsCount:  0,
		AverageRating: nil,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.invalidateCache(ctx)

	if err := s.producer.PublishServiceCreated(ctx, svc); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish service.created event",
			slog.String("service_id", svc.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "service created",
		slog.String("service_id", svc.ID),
		slog.String("provider_email", svc.ProviderEmail),
	)

	return svc, nil
}

// UpdateService applies a partial update to a service.
func (s *CatalogService) UpdateService(ctx context.Context, id string, patch repository.ServicePatch) (*domain.Service, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, apperrors.InvalidInput("name must not be empty")
	}

	svc, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}

	s.invalidateCache(ctx)

	s.logger.InfoContext(ctx, "service updated",
		slog.String("service_id", svc.ID),
	)

	return svc, nil
}

// DeleteService removes a service and its reviews. It returns the number of
// rows removed; deleting an absent service returns 0.
func (s *CatalogService) DeleteService(ctx context.Context, id string) (int64, error) {
	count, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete service: %w", err)
	}

	if count > 0 {
		s.invalidateCache(ctx)

		if err := s.producer.PublishServiceDeleted(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish service.deleted event",
				slog.String("service_id", id),
				slog.String("error", err.Error()),
			)
		}

		s.logger.InfoContext(ctx, "service deleted",
			slog.String("service_id", id),
		)
	}

	return count, nil
}

// ListByProvider returns the services offered by the given provider.
func (s *CatalogService) ListByProvider(ctx context.Context, providerEmail string) ([]domain.Service, error) {
	if providerEmail == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	services, err := s.repo.ListByProvider(ctx, providerEmail)
	if err != nil {
		return nil, fmt.Errorf("list services by provider: %w", err)
	}

	return services, nil
}

func (s *CatalogService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "catalog cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}

func clampServices(services []domain.Service, limit int) []domain.Service {
	if len(services) > limit {
		return services[:limit]
	}
	return services
}
