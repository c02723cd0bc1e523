package repository

import (
	"context"
	"errors"
	"time"

	"feastly/internal/app/platform/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type orderRepository struct {
	db *gorm.DB // GORM DB для работы с PostgreSQL
}

// NewOrderRepository создает новый репозиторий заказов
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create создает заказ вместе с позициями (association через GORM)
func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrOrderExists
		}
		return err
	}
	return nil
}

// GetByID получает заказ с позициями
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}

	return &order, nil
}

// GetByCustomerID получает заказы клиента постранично, новые сверху
func (r *orderRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]entity.Order, int64, error) {
	return r.listOrders(ctx, "customer_id = ?", customerID, page, limit)
}

// GetByRestaurantID получает заказы ресторана постранично, новые сверху
func (r *orderRepository) GetByRestaurantID(ctx context.Context, restaurantID uuid.UUID, page, limit int) ([]entity.Order, int64, error) {
	return r.listOrders(ctx, "restaurant_id = ?", restaurantID, page, limit)
}

func (r *orderRepository) listOrders(ctx context.Context, cond string, arg uuid.UUID, page, limit int) ([]entity.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where(cond, arg).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		Where(cond, arg).
		Order("order_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders)

	if result.Error != nil {
		return nil, 0, result.Error
	}

	return orders, total, nil
}

// UpdateStatus обновляет статус заказа с optimistic locking
// Запись со сменившимся version не трогается - возвращается ErrOrderConflict
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, version int, status entity.OrderStatus, completedAt *time.Time) error {
	updates := map[string]interface{}{
		"status":  status,
		"version": gorm.Expr("version + 1"),
	}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}

	result := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrOrderConflict
	}

	return nil
}

// AggregateCompleted считает количество и выручку завершенных заказов в окне
func (r *orderRepository) AggregateCompleted(ctx context.Context, restaurantID *uuid.UUID, from, to time.Time) (int64, float64, error) {
	var row struct {
		CompletedOrders int64
		Revenue         float64
	}

	query := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Select("COUNT(*) AS completed_orders, COALESCE(SUM(total_price), 0) AS revenue").
		Where("status = ?", entity.OrderStatusCompleted).
		Where("completed_at BETWEEN ? AND ?", from, to)

	if restaurantID != nil {
		query = query.Where("restaurant_id = ?", *restaurantID)
	}

	if err := query.Scan(&row).Error; err != nil {
		return 0, 0, err
	}

	return row.CompletedOrders, row.Revenue, nil
}

// TopProducts строит топ товаров по проданному количеству в окне
// Товары с нулевым lifetime sales_count отфильтрованы заранее:
// они не могли попасть в завершенные заказы окна
func (r *orderRepository) TopProducts(ctx context.Context, restaurantID *uuid.UUID, from, to time.Time, limit int) ([]entity.TopProduct, error) {
	var rows []struct {
		ProductID    uuid.UUID
		Name         string
		RestaurantID uuid.UUID
		TotalSold    int
	}

	query := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id, order_items.name, products.restaurant_id, SUM(order_items.quantity) AS total_sold").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.status = ?", entity.OrderStatusCompleted).
		Where("orders.completed_at BETWEEN ? AND ?", from, to).
		Where("products.sales_count > 0")

	if restaurantID != nil {
		query = query.Where("orders.restaurant_id = ?", *restaurantID)
	}

	err := query.
		Group("order_items.product_id, order_items.name, products.restaurant_id").
		Order("total_sold DESC, order_items.product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	top := make([]entity.TopProduct, 0, len(rows))
	for _, row := range rows {
		top = append(top, entity.TopProduct{
			ProductID:    row.ProductID.String(),
			Name:         row.Name,
			TotalSold:    row.TotalSold,
			RestaurantID: row.RestaurantID.String(),
		})
	}

	return top, nil
}
