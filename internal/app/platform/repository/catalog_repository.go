package repository

import (
	"context"
	"errors"

	"feastly/internal/app/platform/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository создает репозиторий каталога (товары и рестораны)
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// GetProduct получает товар по ID
func (r *catalogRepository) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// GetRestaurant получает ресторан по ID
func (r *catalogRepository) GetRestaurant(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error) {
	var restaurant entity.Restaurant
	result := r.db.WithContext(ctx).First(&restaurant, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, result.Error
	}

	return &restaurant, nil
}

// IncrementSalesCount атомарно увеличивает счетчик продаж товара
// Одно UPDATE-выражение на стороне БД, без read-modify-write в приложении
func (r *catalogRepository) IncrementSalesCount(ctx context.Context, productID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", productID).
		UpdateColumn("sales_count", gorm.Expr("sales_count + ?", quantity))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// ApplyRatingDelta применяет дельты агрегатов рейтинга к ресторану и товару
// Обе записи меняются в одной транзакции, производное поле rating
// пересчитывается тем же UPDATE-выражением: round(sum/count, 1), 0 при count 0
func (r *catalogRepository) ApplyRatingDelta(ctx context.Context, restaurantID, productID uuid.UUID, countDelta, restaurantSumDelta, productSumDelta int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(`
			UPDATE restaurants
			SET rating_count = rating_count + ?,
			    rating_sum = rating_sum + ?,
			    rating = CASE
			        WHEN rating_count + ? > 0
			        THEN ROUND((rating_sum + ?)::numeric / (rating_count + ?), 1)
			        ELSE 0
			    END
			WHERE id = ?`,
			countDelta, restaurantSumDelta,
			countDelta, restaurantSumDelta, countDelta,
			restaurantID,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRestaurantNotFound
		}

		result = tx.Exec(`
			UPDATE products
			SET rating_count = rating_count + ?,
			    rating_sum = rating_sum + ?,
			    rating = CASE
			        WHEN rating_count + ? > 0
			        THEN ROUND((rating_sum + ?)::numeric / (rating_count + ?), 1)
			        ELSE 0
			    END
			WHERE id = ?`,
			countDelta, productSumDelta,
			countDelta, productSumDelta, countDelta,
			productID,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		return nil
	})
}

// GetAllRestaurantIDs возвращает идентификаторы всех ресторанов
// Используется планировщиком отчетов для fan-out
func (r *catalogRepository) GetAllRestaurantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	result := r.db.WithContext(ctx).
		Model(&entity.Restaurant{}).
		Pluck("id", &ids)

	if result.Error != nil {
		return nil, result.Error
	}

	return ids, nil
}

// CountRestaurants считает все рестораны платформы
func (r *catalogRepository) CountRestaurants(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&entity.Restaurant{}).
		Count(&count)

	return count, result.Error
}

// CountRestaurantsByStatus считает рестораны в заданном статусе
func (r *catalogRepository) CountRestaurantsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&entity.Restaurant{}).
		Where("status = ?", status).
		Count(&count)

	return count, result.Error
}
