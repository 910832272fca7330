package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Shorabul/Homigo-Server/internal/domain"
	"github.com/Shorabul/Homigo-Server/internal/event"
	"github.com/Shorabul/Homigo-Server/internal/repository"
	apperrors "github.com/Shorabul/Homigo-Server/pkg/errors"
)

// BookingService implements the business logic for booking operations.
type BookingService struct {
	bookings repository.BookingRepository
	services repository.ServiceRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewBookingService creates a new booking service.
func NewBookingService(bookings repository.BookingRepository, services repository.ServiceRepository, producer *event.Producer, logger *slog.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		services: services,
		producer: producer,
		logger:   logger,
	}
}

// CreateBookingInput holds the parameters for creating a booking.
type CreateBookingInput struct {
	ServiceID string
	UserEmail string
}

// CreateBooking books a service for a user. The service is resolved first;
// a provider booking their own service is rejected before anything is
// written, so a failed attempt leaves no trace.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.ServiceID == "" {
		return nil, apperrors.InvalidInput("service_id is required")
	}
	if input.UserEmail == "" {
		return nil, apperrors.InvalidInput("user_email is required")
	}

	svc, err := s.services.GetByID(ctx, input.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("resolve booked service: %w", err)
	}

	if svc.ProviderEmail == input.UserEmail {
		return nil, apperrors.Conflict("self-booking not permitted")
	}

	booking := &domain.Booking{
		ID:          uuid.New().String(),
		ServiceID:   svc.ID,
		UserEmail:   input.UserEmail,
		ServiceName: svc.Name,
		Price:       svc.Price,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if err := s.producer.PublishBookingCreated(ctx, booking); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish booking.created event",
			slog.String("booking_id", booking.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "booking created",
		slog.String("booking_id", booking.ID),
		slog.String("service_id", booking.ServiceID),
		slog.String("user_email", booking.UserEmail),
	)

	return booking, nil
}

// ListBookings returns a user's bookings in insertion order.
func (s *BookingService) ListBookings(ctx context.Context, userEmail string) ([]domain.Booking, error) {
	if userEmail == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	bookings, err := s.bookings.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return bookings, nil
}

// DeleteBooking cancels a booking. It returns the number of rows removed;
// deleting an absent booking returns 0, so repeated deletes are idempotent.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) (int64, error) {
	count, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete booking: %w", err)
	}

	if count > 0 {
		if err := s.producer.PublishBookingDeleted(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish booking.deleted event",
				slog.String("booking_id", id),
				slog.String("error", err.Error()),
			)
		}

		s.logger.InfoContext(ctx, "booking deleted",
			slog.String("booking_id", id),
		)
	}

	return count, nil
}
