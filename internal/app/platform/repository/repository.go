package repository

import (
	"context"
	"errors"
	"time"

	"feastly/internal/app/platform/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderExists        = errors.New("order already exists")
	ErrOrderConflict      = errors.New("order version conflict")
	ErrProductNotFound    = errors.New("product not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrReviewNotFound     = errors.New("review not found")
)

// OrderRepository - заказы и позиции в PostgreSQL,
// включая оконную агрегацию для отчетов
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]entity.Order, int64, error)
	GetByRestaurantID(ctx context.Context, restaurantID uuid.UUID, page, limit int) ([]entity.Order, int64, error)
	// UpdateStatus выполняет переход статуса с optimistic locking:
	// запись обновляется только если version не изменился с момента чтения
	UpdateStatus(ctx context.Context, id uuid.UUID, version int, status entity.OrderStatus, completedAt *time.Time) error
	// AggregateCompleted возвращает количество и выручку завершенных заказов,
	// чей completed_at попадает в окно; restaurantID == nil - вся платформа
	AggregateCompleted(ctx context.Context, restaurantID *uuid.UUID, from, to time.Time) (int64, float64, error)
	// TopProducts возвращает топ товаров по проданному количеству
	// в завершенных заказах окна, с tiebreak по product_id
	TopProducts(ctx context.Context, restaurantID *uuid.UUID, from, to time.Time, limit int) ([]entity.TopProduct, error)
}

// CatalogRepository - товары и рестораны в PostgreSQL
// Все изменения счетчиков - атомарные инкременты на стороне БД
type CatalogRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error)
	// IncrementSalesCount атомарно увеличивает sales_count товара
	IncrementSalesCount(ctx context.Context, productID uuid.UUID, quantity int) error
	// ApplyRatingDelta применяет дельты агрегатов рейтинга к ресторану и товару
	// в одной транзакции и пересчитывает производное поле rating
	ApplyRatingDelta(ctx context.Context, restaurantID, productID uuid.UUID, countDelta, restaurantSumDelta, productSumDelta int) error
	GetAllRestaurantIDs(ctx context.Context) ([]uuid.UUID, error)
	CountRestaurants(ctx context.Context) (int64, error)
	CountRestaurantsByStatus(ctx context.Context, status string) (int64, error)
}

// UserRepository - пользователи нужны только для счетчиков платформы
type UserRepository interface {
	CountUsers(ctx context.Context) (int64, error)
}

// ReviewRepository - отзывы в MongoDB
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entity.ReviewFilter, page, limit int) ([]entity.Review, int64, error)
}

// ReportRepository - снапшоты отчетов в MongoDB
// Upsert по ключу окна, повторная генерация перезаписывает документ
type ReportRepository interface {
	UpsertMerchantReport(ctx context.Context, report *entity.MerchantReport) error
	UpsertAdminReport(ctx context.Context, report *entity.AdminReport) error
	ListMerchantReports(ctx context.Context, restaurantID string, filter entity.ReportFilter, page, limit int) ([]entity.MerchantReport, int64, error)
	ListAdminReports(ctx context.Context, filter entity.ReportFilter, page, limit int) ([]entity.AdminReport, int64, error)
}
