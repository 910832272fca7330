package postgres

import (
	"context"
	"fmt"

	"github.com/Shorabul/Homigo-Server/internal/domain"
	"github.com/Shorabul/Homigo-Server/pkg/database"
	apperrors "github.com/Shorabul/Homigo-Server/pkg/errors"
)

// BookingRepository implements repository.BookingRepository using PostgreSQL.
type BookingRepository struct {
	pool database.DBTX
}

// NewBookingRepository creates a new PostgreSQL-backed booking repository.
func NewBookingRepository(pool database.DBTX) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Create inserts a new booking into the database.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, service_id, user_email, service_name, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.ServiceID,
		b.UserEmail,
		b.ServiceName,
		b.Price,
		b.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("service", b.ServiceID)
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	return nil
}

// ListByUser returns a user's bookings in insertion order.
func (r *BookingRepository) ListByUser(ctx context.Context, userEmail string) ([]domain.Booking, error) {
	query := `
		SELECT id, service_id, user_email, service_name, price, created_at
		FROM bookings
		WHERE user_email = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, userEmail)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID,
			&b.ServiceID,
			&b.UserEmail,
			&b.ServiceName,
			&b.Price,
			&b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	if bookings == nil {
		bookings = []domain.Booking{}
	}

	return bookings, nil
}

// Delete removes a booking and returns the number of rows removed.
// Deleting an absent booking returns 0.
func (r *BookingRepository) Delete(ctx context.Context, id string) (int64, error) {
	query := `DELETE FROM bookings WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete booking: %w", err)
	}

	return ct.RowsAffected(), nil
}
