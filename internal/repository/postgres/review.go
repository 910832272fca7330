package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Shorabul/Homigo-Server/internal/domain"
	"github.com/Shorabul/Homigo-Server/pkg/database"
	apperrors "github.com/Shorabul/Homigo-Server/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create appends a review and recomputes the parent service's aggregate
// rating fields. The insert and the recompute run in one transaction so
// concurrent submissions serialize on the service row and the stored
// average always reflects the full review set.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO reviews (id, service_id, user_name, email, photo_url, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(ctx, insertQuery,
		review.ID,
		review.ServiceID,
		review.UserName,
		review.Email,
		review.PhotoURL,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("service", review.ServiceID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	recomputeQuery := `
		UPDATE services s
		SET ratings_count = agg.cnt, average_rating = agg.avg, updated_at = $2
		FROM (SELECT COUNT(*) AS cnt, AVG(rating) AS avg FROM reviews WHERE service_id = $1) agg
		WHERE s.id = $1`

	ct, err := tx.Exec(ctx, recomputeQuery, review.ServiceID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recompute service rating: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("service", review.ServiceID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ListByService returns a service's reviews in insertion order.
func (r *ReviewRepository) ListByService(ctx context.Context, serviceID string) ([]domain.Review, error) {
	query := `
		SELECT id, service_id, user_name, email, photo_url, rating, comment, created_at
		FROM reviews
		WHERE service_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ServiceID,
			&rv.UserName,
			&rv.Email,
			&rv.PhotoURL,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, nil
}

// ListAll returns the flattened review summaries across all services,
// grouped per service with each service's reviews in insertion order.
func (r *ReviewRepository) ListAll(ctx context.Context) ([]domain.ReviewSummary, error) {
	query := `
		SELECT s.name, rv.user_name, rv.photo_url, rv.rating, rv.comment
		FROM reviews rv
		JOIN services s ON s.id = rv.service_id
		ORDER BY s.name ASC, rv.created_at ASC, rv.id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all reviews: %w", err)
	}
	defer rows.Close()

	var summaries []domain.ReviewSummary
	for rows.Next() {
		var sum domain.ReviewSummary
		if err := rows.Scan(
			&sum.ServiceName,
			&sum.UserName,
			&sum.PhotoURL,
			&sum.Rating,
			&sum.Comment,
		); err != nil {
			return nil, fmt.Errorf("scan review summary row: %w", err)
		}
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review summary rows: %w", err)
	}

	if summaries == nil {
		summaries = []domain.ReviewSummary{}
	}

	return summaries, nil
}
