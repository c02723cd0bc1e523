package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"feastly/internal/app/platform/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OrderRepositoryTestSuite тестовый suite для PostgreSQL repository
type OrderRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  OrderRepository
	sqlDB *sql.DB
}

func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryTestSuite))
}

func (s *OrderRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewOrderRepository(s.db)
}

func (s *OrderRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== GetByID Tests =====================

func (s *OrderRepositoryTestSuite) TestGetByID_Success() {
	ctx := context.Background()
	orderID := uuid.New()
	customerID := uuid.New()
	restaurantID := uuid.New()

	orderRows := sqlmock.NewRows([]string{"id", "customer_id", "restaurant_id", "total_price", "address", "status", "version"}).
		AddRow(orderID, customerID, restaurantID, 450.0, "Jl. Sudirman 10", "pending", 2)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE id = $1`)).
		WithArgs(orderID, 1).
		WillReturnRows(orderRows)

	itemRows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "name", "quantity", "final_price", "subtotal"}).
		AddRow(uuid.New(), orderID, uuid.New(), "Nasi Goreng", 2, 150.0, 300.0)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "order_items" WHERE "order_items"."order_id" = $1`)).
		WithArgs(orderID).
		WillReturnRows(itemRows)

	order, err := s.repo.GetByID(ctx, orderID)

	s.NoError(err)
	s.NotNil(order)
	s.Equal(orderID, order.ID)
	s.Equal(customerID, order.CustomerID)
	s.Equal(entity.OrderStatusPending, order.Status)
	s.Equal(2, order.Version)
	s.Len(order.Items, 1)
	s.Equal("Nasi Goreng", order.Items[0].Name)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()
	orderID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE id = $1`)).
		WithArgs(orderID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	order, err := s.repo.GetByID(ctx, orderID)

	s.ErrorIs(err, ErrOrderNotFound)
	s.Nil(order)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== UpdateStatus Tests =====================

func (s *OrderRepositoryTestSuite) TestUpdateStatus_Success() {
	ctx := context.Background()
	orderID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.UpdateStatus(ctx, orderID, 2, entity.OrderStatusProcessing, nil)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestUpdateStatus_VersionConflict() {
	ctx := context.Background()
	orderID := uuid.New()

	// Конкурентный переход уже увеличил version - строка не матчится
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	err := s.repo.UpdateStatus(ctx, orderID, 2, entity.OrderStatusProcessing, nil)

	s.ErrorIs(err, ErrOrderConflict)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestUpdateStatus_WithCompletedAt() {
	ctx := context.Background()
	orderID := uuid.New()
	completedAt := time.Now()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.UpdateStatus(ctx, orderID, 0, entity.OrderStatusCompleted, &completedAt)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestUpdateStatus_DBError() {
	ctx := context.Background()
	orderID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	err := s.repo.UpdateStatus(ctx, orderID, 1, entity.OrderStatusCancelled, nil)

	s.Error(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== AggregateCompleted Tests =====================

func (s *OrderRepositoryTestSuite) TestAggregateCompleted_ForRestaurant() {
	ctx := context.Background()
	restaurantID := uuid.New()
	from := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 15, 23, 59, 59, 999000000, time.UTC)

	rows := sqlmock.NewRows([]string{"completed_orders", "revenue"}).
		AddRow(3, 600.0)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) AS completed_orders, COALESCE(SUM(total_price), 0) AS revenue FROM "orders"`)).
		WithArgs("completed", from, to, restaurantID).
		WillReturnRows(rows)

	count, revenue, err := s.repo.AggregateCompleted(ctx, &restaurantID, from, to)

	s.NoError(err)
	s.Equal(int64(3), count)
	s.Equal(600.0, revenue)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestAggregateCompleted_PlatformWide() {
	ctx := context.Background()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 999000000, time.UTC)

	rows := sqlmock.NewRows([]string{"completed_orders", "revenue"}).
		AddRow(0, 0.0)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) AS completed_orders, COALESCE(SUM(total_price), 0) AS revenue FROM "orders"`)).
		WithArgs("completed", from, to).
		WillReturnRows(rows)

	count, revenue, err := s.repo.AggregateCompleted(ctx, nil, from, to)

	s.NoError(err)
	s.Zero(count)
	s.Zero(revenue)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== TopProducts Tests =====================

func (s *OrderRepositoryTestSuite) TestTopProducts_ReturnsOrderedRows() {
	ctx := context.Background()
	restaurantID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()
	from := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 15, 23, 59, 59, 999000000, time.UTC)

	rows := sqlmock.NewRows([]string{"product_id", "name", "restaurant_id", "total_sold"}).
		AddRow(productA, "Nasi Goreng", restaurantID, 12).
		AddRow(productB, "Es Teh", restaurantID, 7)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT order_items.product_id, order_items.name, products.restaurant_id, SUM(order_items.quantity) AS total_sold FROM "order_items"`)).
		WithArgs("completed", from, to, restaurantID, 5).
		WillReturnRows(rows)

	top, err := s.repo.TopProducts(ctx, &restaurantID, from, to, 5)

	s.NoError(err)
	s.Len(top, 2)
	s.Equal(productA.String(), top[0].ProductID)
	s.Equal(12, top[0].TotalSold)
	s.Equal(restaurantID.String(), top[0].RestaurantID)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestTopProducts_EmptyWindow() {
	ctx := context.Background()
	from := time.Now()
	to := from.Add(time.Hour)

	rows := sqlmock.NewRows([]string{"product_id", "name", "restaurant_id", "total_sold"})

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT order_items.product_id, order_items.name, products.restaurant_id, SUM(order_items.quantity) AS total_sold FROM "order_items"`)).
		WithArgs("completed", from, to, 5).
		WillReturnRows(rows)

	top, err := s.repo.TopProducts(ctx, nil, from, to, 5)

	s.NoError(err)
	s.Empty(top)
	s.NoError(s.mock.ExpectationsWereMet())
}
