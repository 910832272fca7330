package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Shorabul/Homigo-Server/internal/domain"
	"github.com/Shorabul/Homigo-Server/internal/repository"
	"github.com/Shorabul/Homigo-Server/pkg/database"
	apperrors "github.com/Shorabul/Homigo-Server/pkg/errors"
)

const serviceColumns = `id, provider_email, name, description, price, image_url, ratings_count, average_rating, created_at, updated_at`

// ServiceRepository implements repository.ServiceRepository using PostgreSQL.
type ServiceRepository struct {
	pool database.DBTX
}

// NewServiceRepository creates a new PostgreSQL-backed service repository.
func NewServiceRepository(pool database.DBTX) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

// Create inserts a new service into the database.
func (r *ServiceRepository) Create(ctx context.Context, svc *domain.Service) error {
	query := `
		INSERT INTO services (id, provider_email, name, description, price, image_url, ratings_count, average_rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		svc.ID,
		svc.ProviderEmail,
		svc.Name,
		svc.Description,
		svc.Price,
		svc.ImageURL,
		svc.RatingsCount,
		svc.AverageRating,
		svc.CreatedAt,
		svc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}

	return nil
}

// GetByID retrieves a service by its ID.
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	var svc domain.Service
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.ProviderEmail,
		&svc.Name,
		&svc.Description,
		&svc.Price,
		&svc.ImageURL,
		&svc.RatingsCount,
		&svc.AverageRating,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("service", id)
		}
		return nil, fmt.Errorf("scan service: %w", err)
	}

	return &svc, nil
}

// List returns services matching the given filter in insertion order.
func (r *ServiceRepository) List(ctx context.Context, filter repository.ServiceFilter) ([]domain.Service, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM services
		%s
		ORDER BY created_at ASC, id ASC`,
		serviceColumns, whereClause,
	)

	return r.queryServices(ctx, query, args...)
}

// ListTopRated returns up to limit services ordered by review count,
// ties broken by insertion order.
func (r *ServiceRepository) ListTopRated(ctx context.Context, limit int) ([]domain.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		ORDER BY ratings_count DESC, created_at ASC, id ASC
		LIMIT $1`

	return r.queryServices(ctx, query, limit)
}

// ListBanner returns banner projections of the newest services.
func (r *ServiceRepository) ListBanner(ctx context.Context, limit int) ([]domain.BannerItem, error) {
	query := `
		SELECT name, description, image_url
		FROM services
		ORDER BY created_at DESC, id ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list banner services: %w", err)
	}
	defer rows.Close()

	var items []domain.BannerItem
	for rows.Next() {
		var item domain.BannerItem
		if err := rows.Scan(&item.Name, &item.Description, &item.ImageURL); err != nil {
			return nil, fmt.Errorf("scan banner row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banner rows: %w", err)
	}

	if items == nil {
		items = []domain.BannerItem{}
	}

	return items, nil
}

// ListByProvider returns the services offered by the given provider.
func (r *ServiceRepository) ListByProvider(ctx context.Context, providerEmail string) ([]domain.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE provider_email = $1
		ORDER BY created_at ASC, id ASC`

	return r.queryServices(ctx, query, providerEmail)
}

// Update applies a partial update and returns the updated service.
// Only the fields set on the patch are modified.
func (r *ServiceRepository) Update(ctx context.Context, id string, patch repository.ServicePatch) (*domain.Service, error) {
	var (
		sets     []string
		args     []any
		argIndex = 1
	)

	if patch.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, *patch.Name)
		argIndex++
	}

	if patch.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argIndex))
		args = append(args, *patch.Description)
		argIndex++
	}

	if patch.Price != nil {
		sets = append(sets, fmt.Sprintf("price = $%d", argIndex))
		args = append(args, *patch.Price)
		argIndex++
	}

	if patch.ImageURL != nil {
		sets = append(sets, fmt.Sprintf("image_url = $%d", argIndex))
		args = append(args, *patch.ImageURL)
		argIndex++
	}

	if len(sets) == 0 {
		// Nothing to change; an empty patch still verifies existence.
		return r.GetByID(ctx, id)
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now().UTC())
	argIndex++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE services
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), argIndex, serviceColumns,
	)

	var svc domain.Service
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&svc.ID,
		&svc.ProviderEmail,
		&svc.Name,
		&svc.Description,
		&svc.Price,
		&svc.ImageURL,
		&svc.RatingsCount,
		&svc.AverageRating,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("service", id)
		}
		return nil, fmt.Errorf("update service: %w", err)
	}

	return &svc, nil
}

// Delete removes a service and its reviews (via cascade). It returns the
// number of rows removed; deleting an absent service returns 0.
func (r *ServiceRepository) Delete(ctx context.Context, id string) (int64, error) {
	query := `DELETE FROM services WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete service: %w", err)
	}

	return ct.RowsAffected(), nil
}

// queryServices executes a query returning full service rows.
func (r *ServiceRepository) queryServices(ctx context.Context, query string, args ...any) ([]domain.Service, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		var svc domain.Service
		if err := rows.Scan(
			&svc.ID,
			&svc.ProviderEmail,
			&svc.Name,
			&svc.Description,
			&svc.Price,
			&svc.ImageURL,
			&svc.RatingsCount,
			&svc.AverageRating,
			&svc.CreatedAt,
			&svc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan service row: %w", err)
		}
		services = append(services, svc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service rows: %w", err)
	}

	if services == nil {
		services = []domain.Service{}
	}

	return services, nil
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key constraint violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}
