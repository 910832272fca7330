package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shorabul/Homigo-Server/internal/domain"
	pkgkafka "github.com/Shorabul/Homigo-Server/pkg/kafka"
)

// Kafka topic constants for marketplace domain events.
const (
	TopicServiceCreated  = "homigo.service.created"
	TopicServiceDeleted  = "homigo.service.deleted"
	TopicBookingCreated  = "homigo.booking.created"
	TopicBookingDeleted  = "homigo.booking.deleted"
	TopicReviewSubmitted = "homigo.review.submitted"
)

// Aggregate type constants.
const (
	AggregateTypeService = "service"
	AggregateTypeBooking = "booking"
)

// Source identifier for events originating from this server.
const SourceMarketplace = "homigo-server"

// ServiceCreatedData is the payload for a service.created event.
type ServiceCreatedData struct {
	ID            string `json:"id"`
	ProviderEmail string `json:"provider_email"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
}

// ServiceDeletedData is the payload for a service.deleted event.
type ServiceDeletedData struct {
	ID string `json:"id"`
}

// BookingCreatedData is the payload for a booking.created event.
type BookingCreatedData struct {
	ID          string `json:"id"`
	ServiceID   string `json:"service_id"`
	UserEmail   string `json:"user_email"`
	ServiceName string `json:"service_name"`
	Price       int64  `json:"price"`
}

// BookingDeletedData is the payload for a booking.deleted event.
type BookingDeletedData struct {
	ID string `json:"id"`
}

// ReviewSubmittedData is the payload for a review.submitted event.
type ReviewSubmittedData struct {
	ID        string `json:"id"`
	ServiceID string `json:"service_id"`
	Rating    int    `json:"rating"`
}

// Producer publishes marketplace domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishServiceCreated publishes a service.created event.
func (p *Producer) PublishServiceCreated(ctx context.Context, svc *domain.Service) error {
	data := ServiceCreatedData{
		ID:            svc.ID,
		ProviderEmail: svc.ProviderEmail,
		Name:          svc.Name,
		Price:         svc.Price,
	}

	event, err := pkgkafka.NewEvent(TopicServiceCreated, svc.ID, AggregateTypeService, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create service.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicServiceCreated, event); err != nil {
		return fmt.Errorf("publish service.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published service.created event",
		slog.String("service_id", svc.ID),
	)

	return nil
}

// PublishServiceDeleted publishes a service.deleted event.
func (p *Producer) PublishServiceDeleted(ctx context.Context, serviceID string) error {
	event, err := pkgkafka.NewEvent(TopicServiceDeleted, serviceID, AggregateTypeService, SourceMarketplace, ServiceDeletedData{ID: serviceID})
	if err != nil {
		return fmt.Errorf("create service.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicServiceDeleted, event); err != nil {
		return fmt.Errorf("publish service.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published service.deleted event",
		slog.String("service_id", serviceID),
	)

	return nil
}

// PublishBookingCreated publishes a booking.created event.
func (p *Producer) PublishBookingCreated(ctx context.Context, b *domain.Booking) error {
	data := BookingCreatedData{
		ID:          b.ID,
		ServiceID:   b.ServiceID,
		UserEmail:   b.UserEmail,
		ServiceName: b.ServiceName,
		Price:       b.Price,
	}

	event, err := pkgkafka.NewEvent(TopicBookingCreated, b.ID, AggregateTypeBooking, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create booking.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookingCreated, event); err != nil {
		return fmt.Errorf("publish booking.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published booking.created event",
		slog.String("booking_id", b.ID),
		slog.String("service_id", b.ServiceID),
	)

	return nil
}

// PublishBookingDeleted publishes a booking.deleted event.
func (p *Producer) PublishBookingDeleted(ctx context.Context, bookingID string) error {
	event, err := pkgkafka.NewEvent(TopicBookingDeleted, bookingID, AggregateTypeBooking, SourceMarketplace, BookingDeletedData{ID: bookingID})
	if err != nil {
		return fmt.Errorf("create booking.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookingDeleted, event); err != nil {
		return fmt.Errorf("publish booking.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published booking.deleted event",
		slog.String("booking_id", bookingID),
	)

	return nil
}

// PublishReviewSubmitted publishes a review.submitted event keyed by the
// reviewed service so per-service ordering is preserved.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, review *domain.Review) error {
	data := ReviewSubmittedData{
		ID:        review.ID,
		ServiceID: review.ServiceID,
		Rating:    review.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewSubmitted, review.ServiceID, AggregateTypeService, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create review.submitted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewSubmitted, event); err != nil {
		return fmt.Errorf("publish review.submitted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.submitted event",
		slog.String("review_id", review.ID),
		slog.String("service_id", review.ServiceID),
	)

	return nil
}
