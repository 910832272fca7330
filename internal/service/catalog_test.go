package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Shorabul/Homigo-Server/internal/cache"
	"github.com/Shorabul/Homigo-Server/internal/domain"
	"github.com/Shorabul/Homigo-Server/internal/event"
	"github.com/Shorabul/Homigo-Server/internal/repository"
	apperrors "github.com/Shorabul/Homigo-Server/pkg/errors"
	pkgkafka "github.com/Shorabul/Homigo-Server/pkg/kafka"
)

// --- Mock Repositories ---

type mockServiceRepository struct {
	mock.Mock
}

func (m *mockServiceRepository) Create(ctx context.Context, svc *domain.Service) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

func (m *mockServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *mockServiceRepository) List(ctx context.Context, filter repository.ServiceFilter) ([]domain.Service, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Service), args.Error(1)
}

func (m *mockServiceRepository) ListTopRated(ctx context.Context, limit int) ([]domain.Service, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Service), args.Error(1)
}

func (m *mockServiceRepository) ListBanner(ctx context.Context, limit int) ([]domain.BannerItem, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BannerItem), args.Error(1)
}

func (m *mockServiceRepository) ListByProvider(ctx context.Context, providerEmail string) ([]domain.Service, error) {
	args := m.Called(ctx, providerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Service), args.Error(1)
}

func (m *mockServiceRepository) Update(ctx context.Context, id string, patch repository.ServicePatch) (*domain.Service, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *mockServiceRepository) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestProducer() *event.Producer {
	logger := newTestLogger()
	// Create a Kafka producer that will fail silently in tests (no real broker).
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func newTestCache(t *testing.T) (*cache.CatalogCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewCatalogCache(client, time.Minute), mr
}

func newTestCatalog(t *testing.T, repo *mockServiceRepository) (*CatalogService, *miniredis.Miniredis) {
	t.Helper()
	catalogCache, mr := newTestCache(t)
	return NewCatalogService(repo, catalogCache, newTestProducer(), newTestLogger()), mr
}

func int64Ptr(v int64) *int64 {
	return &v
}

func float64Ptr(v float64) *float64 {
	return &v
}

func strPtr(s string) *string {
	return &s
}

func catalogFixture(n int) []domain.Service {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	services := make([]domain.Service, 0, n)
	for i := 0; i < n; i++ {
		services = append(services, domain.Service{
			ID:            "svc-" + string(rune('a'+i)),
			ProviderEmail: "provider@example.com",
			Name:          "Service " + string(rune('A'+i)),
			Price:         int64(1000 * (i + 1)),
			RatingsCount:  int64(n - i),
			AverageRating: float64Ptr(4.0),
			CreatedAt:     now.Add(time.Duration(i) * time.Minute),
			UpdatedAt:     now.Add(time.Duration(i) * time.Minute),
		})
	}
	return services
}

// --- Tests ---

func TestCreateService_Success(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, _ := newTestCatalog(t, repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Service")).Return(nil)

	created, err := svc.CreateService(ctx, CreateServiceInput{
		ProviderEmail: "pro@example.com",
		Name:          "Deep Cleaning",
		Description:   "Full home deep clean",
		Price:         4500,
		ImageURL:      "https://img.example.com/clean.jpg",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "pro@example.com", created.ProviderEmail)
	assert.Equal(t, int64(0), created.RatingsCount)
	assert.Nil(t, created.AverageRating)
	assert.NotZero(t, created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	repo.AssertExpectations(t)
}

func TestCreateService_MissingProviderEmail(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, _ := newTestCatalog(t, repo)

	_, err := svc.CreateService(context.Background(), CreateServiceInput{
		Name:  "Deep Cleaning",
		Price: 4500,
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestCreateService_NegativePrice(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, _ := newTestCatalog(t, repo)

	_, err := svc.CreateService(context.Background(), CreateServiceInput{
		ProviderEmail: "pro@example.com",
		Name:          "Deep Cleaning",
		Price:         -1,
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestListServices_PriceBoundsValidated(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, _ := newTestCatalog(t, repo)
	ctx := context.Background()

	_, err := svc.ListServices(ctx, repository.ServiceFilter{MinPrice: int64Ptr(-1)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.ListServices(ctx, repository.ServiceFilter{
		MinPrice: int64Ptr(5000),
		MaxPrice: int64Ptr(1000),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	repo.AssertNotCalled(t, "List")
}

func TestListServices_PassesFilterThrough(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, _ := newTestCatalog(t, repo)
	ctx := context.Background()

	filter := repository.ServiceFilter{MinPrice: int64Ptr(1000), MaxPrice: int64Ptr(5000)}
	repo.On("List", ctx, filter).Return([]domain.Service{}, nil)

	services, err := svc.ListServices(ctx, filter)

	require.NoError(t, err)
	assert.NotNil(t, services)
	assert.Empty(t, services)
	repo.AssertExpectations(t)
}

func TestListTopRated_CacheMissFetchesAndPopulates(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, mr := newTestCatalog(t, repo)
	ctx := context.Background()

	fixture := catalogFixture(6)
	repo.On("ListTopRated", ctx, TopRatedLimit).Return(fixture, nil).Once()

	services, err := svc.ListTopRated(ctx, 0)

	require.NoError(t, err)
	assert.Len(t, services, 6)
	assert.True(t, mr.Exists("catalog:top-rated"))

	// Second call is served from cache and never touches the repository.
	services, err = svc.ListTopRated(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, services, 6)

	repo.AssertNumberOfCalls(t, "ListTopRated", 1)
}

func TestListTopRated_ClampsRequestedLimit(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, _ := newTestCatalog(t, repo)
	ctx := context.Background()

	fixture := catalogFixture(6)
	repo.On("ListTopRated", ctx, TopRatedLimit).Return(fixture, nil)

	services, err := svc.ListTopRated(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, services, 2)
	assert.Equal(t, fixture[0].ID, services[0].ID)

	// A limit above the cap is clamped down to it.
	services, err = svc.ListTopRated(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, services, 6)
}

func TestListBanner_CacheMissFetchesAndPopulates(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, mr := newTestCatalog(t, repo)
	ctx := context.Background()

	items := []domain.BannerItem{
		{Name: "Deep Cleaning", Description: "Full home deep clean", ImageURL: "https://img.example.com/a.jpg"},
		{Name: "Plumbing", Description: "Emergency repairs", ImageURL: "https://img.example.com/b.jpg"},
	}
	repo.On("ListBanner", ctx, BannerLimit).Return(items, nil).Once()

	got, err := svc.ListBanner(ctx, 0)

	require.NoError(t, err)
	assert.Equal(t, items, got)
	assert.True(t, mr.Exists("catalog:banner"))

	got, err = svc.ListBanner(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	repo.AssertNumberOfCalls(t, "ListBanner", 1)
}

func TestGetService_NotFoundPropagates(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, _ := newTestCatalog(t, repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, "missing-id").Return(nil, apperrors.NotFound("service", "missing-id"))

	_, err := svc.GetService(ctx, "missing-id")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestUpdateService_InvalidatesCache(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, mr := newTestCatalog(t, repo)
	ctx := context.Background()

	require.NoError(t, mr.Set("catalog:top-rated", "[]"))
	require.NoError(t, mr.Set("catalog:banner", "[]"))

	patch := repository.ServicePatch{Price: int64Ptr(9900)}
	updated := catalogFixture(1)[0]
	repo.On("Update", ctx, updated.ID, patch).Return(&updated, nil)

	_, err := svc.UpdateService(ctx, updated.ID, patch)

	require.NoError(t, err)
	assert.False(t, mr.Exists("catalog:top-rated"))
	assert.False(t, mr.Exists("catalog:banner"))
	repo.AssertExpectations(t)
}

func TestUpdateService_RejectsBadPatch(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, _ := newTestCatalog(t, repo)
	ctx := context.Background()

	_, err := svc.UpdateService(ctx, "id", repository.ServicePatch{Price: int64Ptr(-1)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.UpdateService(ctx, "id", repository.ServicePatch{Name: strPtr("")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	repo.AssertNotCalled(t, "Update")
}

func TestDeleteService_ReturnsCount(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, mr := newTestCatalog(t, repo)
	ctx := context.Background()

	require.NoError(t, mr.Set("catalog:top-rated", "[]"))

	repo.On("Delete", ctx, "svc-1").Return(int64(1), nil)

	count, err := svc.DeleteService(ctx, "svc-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.False(t, mr.Exists("catalog:top-rated"))
	repo.AssertExpectations(t)
}

func TestDeleteService_AbsentIsZeroNotError(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, mr := newTestCatalog(t, repo)
	ctx := context.Background()

	require.NoError(t, mr.Set("catalog:top-rated", "[]"))

	repo.On("Delete", ctx, "missing-id").Return(int64(0), nil)

	count, err := svc.DeleteService(ctx, "missing-id")

	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	// Nothing changed, so the cache entry survives.
	assert.True(t, mr.Exists("catalog:top-rated"))
	repo.AssertExpectations(t)
}

func TestListByProvider_RequiresEmail(t *testing.T) {
	repo := new(mockServiceRepository)
	svc, _ := newTestCatalog(t, repo)

	_, err := svc.ListByProvider(context.Background(), "")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "ListByProvider")
}
