package mocks

import (
	"context"
	"time"

	"feastly/internal/app/platform/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository мок для OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]entity.Order, int64, error) {
	args := m.Called(ctx, customerID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) GetByRestaurantID(ctx context.Context, restaurantID uuid.UUID, page, limit int) ([]entity.Order, int64, error) {
	args := m.Called(ctx, restaurantID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, version int, status entity.OrderStatus, completedAt *time.Time) error {
	args := m.Called(ctx, id, version, status, completedAt)
	return args.Error(0)
}

func (m *MockOrderRepository) AggregateCompleted(ctx context.Context, restaurantID *uuid.UUID, from, to time.Time) (int64, float64, error) {
	args := m.Called(ctx, restaurantID, from, to)
	return args.Get(0).(int64), args.Get(1).(float64), args.Error(2)
}

func (m *MockOrderRepository) TopProducts(ctx context.Context, restaurantID *uuid.UUID, from, to time.Time, limit int) ([]entity.TopProduct, error) {
	args := m.Called(ctx, restaurantID, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TopProduct), args.Error(1)
}

// MockCatalogRepository мок для CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockCatalogRepository) GetRestaurant(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Restaurant), args.Error(1)
}

func (m *MockCatalogRepository) IncrementSalesCount(ctx context.Context, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *MockCatalogRepository) ApplyRatingDelta(ctx context.Context, restaurantID, productID uuid.UUID, countDelta, restaurantSumDelta, productSumDelta int) error {
	args := m.Called(ctx, restaurantID, productID, countDelta, restaurantSumDelta, productSumDelta)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetAllRestaurantIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCatalogRepository) CountRestaurants(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepository) CountRestaurantsByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository мок для UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockReviewRepository мок для ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) List(ctx context.Context, filter entity.ReviewFilter, page, limit int) ([]entity.Review, int64, error) {
	args := m.Called(ctx, filter, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Review), args.Get(1).(int64), args.Error(2)
}

// MockReportRepository мок для ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) UpsertMerchantReport(ctx context.Context, report *entity.MerchantReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) UpsertAdminReport(ctx context.Context, report *entity.AdminReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) ListMerchantReports(ctx context.Context, restaurantID string, filter entity.ReportFilter, page, limit int) ([]entity.MerchantReport, int64, error) {
	args := m.Called(ctx, restaurantID, filter, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.MerchantReport), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportRepository) ListAdminReports(ctx context.Context, filter entity.ReportFilter, page, limit int) ([]entity.AdminReport, int64, error) {
	args := m.Called(ctx, filter, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.AdminReport), args.Get(1).(int64), args.Error(2)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockStatsCache мок для Redis кеша текущей статистики
type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) GetCurrentStats(ctx context.Context) (*entity.CurrentAdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CurrentAdminStats), args.Error(1)
}

func (m *MockStatsCache) SetCurrentStats(ctx context.Context, stats *entity.CurrentAdminStats, ttl time.Duration) error {
	args := m.Called(ctx, stats, ttl)
	return args.Error(0)
}

func (m *MockStatsCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
