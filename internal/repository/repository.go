package repository

import (
	"context"

	"github.com/Shorabul/Homigo-Server/internal/domain"
)

// ServiceFilter defines filter criteria for listing catalog services. Both
// price bounds are inclusive and optional.
type ServiceFilter struct {
	MinPrice *int64
	MaxPrice *int64
}

// ServicePatch carries a partial update of a service. Nil fields are left
// unchanged; provider and rating fields are never patchable.
type ServicePatch struct {
	Name        *string
	Description *string
	Price       *int64
	ImageURL    *string
}

// ServiceRepository defines the interface for catalog persistence operations.
type ServiceRepository interface {
	// Create inserts a new service into the store.
	Create(ctx context.Context, svc *domain.Service) error

	// GetByID retrieves a service by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Service, error)

	// List returns services matching the given filter in insertion order.
	List(ctx context.Context, filter ServiceFilter) ([]domain.Service, error)

	// ListTopRated returns up to limit services ordered by review count.
	ListTopRated(ctx context.Context, limit int) ([]domain.Service, error)

	// ListBanner returns up to limit banner projections of the newest services.
	ListBanner(ctx context.Context, limit int) ([]domain.BannerItem, error)

	// ListByProvider returns the services offered by the given provider.
	ListByProvider(ctx context.Context, providerEmail string) ([]domain.Service, error)

	// Update applies a partial update and returns the updated service.
	Update(ctx context.Context, id string, patch ServicePatch) (*domain.Service, error)

	// Delete removes a service and returns the number of rows removed.
	// Deleting an absent service returns 0, not an error.
	Delete(ctx context.Context, id string) (int64, error)
}

// BookingRepository defines the interface for booking persistence operations.
type BookingRepository interface {
	// Create inserts a new booking into the store.
	Create(ctx context.Context, b *domain.Booking) error

	// ListByUser returns a user's bookings in insertion order.
	ListByUser(ctx context.Context, userEmail string) ([]domain.Booking, error)

	// Delete removes a booking and returns the number of rows removed.
	// Deleting an absent booking returns 0, not an error.
	Delete(ctx context.Context, id string) (int64, error)
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create appends a review and recomputes the parent service's
	// ratings_count and average_rating in a single transaction.
	Create(ctx context.Context, review *domain.Review) error

	// ListByService returns a service's reviews in insertion order.
	ListByService(ctx context.Context, serviceID string) ([]domain.Review, error)

	// ListAll returns the flattened review summaries across all services.
	ListAll(ctx context.Context) ([]domain.ReviewSummary, error)
}
