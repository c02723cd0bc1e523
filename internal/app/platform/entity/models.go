package entity

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Роли пользователей, приходящие из Auth Service в JWT claims
const (
	RoleCustomer        = "customer"
	RoleAdmin           = "admin"
	RoleRestaurantOwner = "restaurant_owner"
)

// OrderStatus представляет статус заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // Создан, ожидает обработки рестораном
	OrderStatusProcessing OrderStatus = "processing" // Готовится
	OrderStatusOrdering   OrderStatus = "ordering"   // Передан в доставку
	OrderStatusCompleted  OrderStatus = "completed"  // Доставлен, учитывается в выручке
	OrderStatusReviewed   OrderStatus = "reviewed"   // Финальный статус после отзыва
	OrderStatusCancelled  OrderStatus = "cancelled"  // Отменен
)

// IsValid проверяет, что значение входит в множество известных статусов,
// допустимых для прямого перехода (reviewed достижим только через отзыв)
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusOrdering,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal сообщает, является ли статус финальным
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReviewed || s == OrderStatusCancelled
}

// Order представляет заказ клиента в одном ресторане
// Позиции заказа хранят снапшоты названия и цен на момент покупки,
// total_price никогда не пересчитывается по живым ценам каталога
type Order struct {
	ID           uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	CustomerID   uuid.UUID   `json:"customer_id" gorm:"type:uuid;not null"`
	RestaurantID uuid.UUID   `json:"restaurant_id" gorm:"type:uuid;not null"`
	TotalPrice   float64     `json:"total_price" gorm:"type:decimal(10,2);not null"`
	Address      string      `json:"address" gorm:"type:varchar(500);not null"`
	Note         string      `json:"note,omitempty" gorm:"type:varchar(500)"`
	Status       OrderStatus `json:"status" gorm:"type:varchar(50);not null;default:'pending'"`
	OrderDate    time.Time   `json:"order_date" gorm:"autoCreateTime"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"` // Заполняется только при переходе в completed
	Version      int         `json:"version" gorm:"not null;default:0"` // Для optimistic locking при переходах статусов
	Items        []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName указывает имя таблицы для GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem представляет позицию в заказе
type OrderItem struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `json:"order_id" gorm:"type:uuid;not null"`
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Name       string    `json:"name" gorm:"type:varchar(255);not null"` // Снапшот названия товара
	Quantity   int       `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPrice  float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"`  // Базовая цена за единицу
	FinalPrice float64   `json:"final_price" gorm:"type:decimal(10,2);not null"` // Цена за единицу с учетом скидки
	Subtotal   float64   `json:"subtotal" gorm:"type:decimal(10,2);not null"`    // FinalPrice * Quantity
}

// TableName указывает имя таблицы для GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Product представляет товар каталога с агрегатами рейтинга и продаж
// rating_count/rating_sum/sales_count обновляются только атомарными
// инкрементами на стороне БД
type Product struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID `json:"restaurant_id" gorm:"type:uuid;not null"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Price        float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	RatingCount  int       `json:"rating_count" gorm:"not null;default:0"`
	RatingSum    int       `json:"rating_sum" gorm:"not null;default:0"`
	Rating       float64   `json:"rating" gorm:"type:decimal(2,1);not null;default:0"` // rating_sum/rating_count, 1 знак
	SalesCount   int       `json:"sales_count" gorm:"not null;default:0"`              // Увеличивается при completed
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Product) TableName() string {
	return "products"
}

// Статусы ресторана
const (
	RestaurantStatusOpening = "opening"
	RestaurantStatusClosed  = "closed"
)

// Restaurant представляет ресторан с агрегатом рейтинга сервиса
type Restaurant struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Status      string    `json:"status" gorm:"type:varchar(50);not null;default:'opening'"`
	RatingCount int       `json:"rating_count" gorm:"not null;default:0"`
	RatingSum   int       `json:"rating_sum" gorm:"not null;default:0"`
	Rating      float64   `json:"rating" gorm:"type:decimal(2,1);not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Restaurant) TableName() string {
	return "restaurants"
}

// User нужен этому сервису только для подсчета пользователей платформы,
// управление пользователями живет в Auth Service
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Role      string    `json:"role" gorm:"type:varchar(50);not null;default:'customer'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// Review представляет отзыв клиента на товар в рамках завершенного заказа
// Хранится в MongoDB; ссылки на сущности Postgres - строковые UUID
type Review struct {
	ID                      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CustomerID              string             `json:"customer_id" bson:"customer_id"`
	ProductID               string             `json:"product_id" bson:"product_id"`
	RestaurantID            string             `json:"restaurant_id" bson:"restaurant_id"`
	OrderID                 string             `json:"order_id" bson:"order_id"`
	RestaurantServiceRating int                `json:"restaurant_service_rating" bson:"restaurant_service_rating"` // 1..5
	ProductRating           int                `json:"product_rating" bson:"product_rating"`                       // 1..5
	ReviewText              string             `json:"review_text,omitempty" bson:"review_text,omitempty"`
	Image                   string             `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt               time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at" bson:"updated_at"`
}

// ReviewFilter задает фильтры выборки отзывов
// Rating матчит и оценку сервиса, и оценку товара (как в выдаче списка)
type ReviewFilter struct {
	RestaurantID string
	ProductID    string
	CustomerID   string
	Rating       int
}

// ReportPeriod - период отчета
type ReportPeriod string

const (
	ReportPeriodDaily   ReportPeriod = "daily"
	ReportPeriodMonthly ReportPeriod = "monthly"
)

// TopProduct - строка топа продаж за окно отчета
// RestaurantID заполняется только в админском отчете
type TopProduct struct {
	ProductID    string `json:"product_id" bson:"product_id"`
	Name         string `json:"name" bson:"name"`
	TotalSold    int    `json:"total_sold" bson:"total_sold"`
	RestaurantID string `json:"restaurant_id,omitempty" bson:"restaurant_id,omitempty"`
}

// MerchantReport - сохраненный снапшот статистики одного ресторана
// Уникален по (restaurant_id, period, report_date) - всегда upsert
type MerchantReport struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RestaurantID    string             `json:"restaurant_id" bson:"restaurant_id"`
	Period          ReportPeriod       `json:"period" bson:"period"`
	ReportDate      time.Time          `json:"report_date" bson:"report_date"` // Начало окна
	CompletedOrders int                `json:"completed_orders" bson:"completed_orders"`
	Revenue         float64            `json:"revenue" bson:"revenue"`
	TopProducts     []TopProduct       `json:"top_products" bson:"top_products"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// AdminReport - снапшот статистики всей платформы
// TotalUsers/TotalRestaurants заполняются только в месячном документе
type AdminReport struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Period           ReportPeriod       `json:"period" bson:"period"`
	ReportDate       time.Time          `json:"report_date" bson:"report_date"`
	TotalOrders      int                `json:"total_orders" bson:"total_orders"`
	TotalRevenue     float64            `json:"total_revenue" bson:"total_revenue"`
	TopProducts      []TopProduct       `json:"top_products" bson:"top_products"`
	TotalUsers       int64              `json:"total_users,omitempty" bson:"total_users,omitempty"`
	TotalRestaurants int64              `json:"total_restaurants,omitempty" bson:"total_restaurants,omitempty"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// ReportFilter задает фильтры выборки истории отчетов
type ReportFilter struct {
	Period    ReportPeriod
	StartDate *time.Time
	EndDate   *time.Time
}

// MerchantReportData - вычисленная статистика ресторана за одно окно
type MerchantReportData struct {
	CompletedOrders int          `json:"completed_orders"`
	Revenue         float64      `json:"revenue"`
	TopProducts     []TopProduct `json:"top_products"`
}

// MerchantStats - результат генерации отчета ресторана за оба окна
type MerchantStats struct {
	Daily   MerchantReportData `json:"daily"`
	Monthly MerchantReportData `json:"monthly"`
}

// AdminReportData - вычисленная статистика платформы за одно окно
type AdminReportData struct {
	TotalOrders  int          `json:"total_orders"`
	TotalRevenue float64      `json:"total_revenue"`
	TopProducts  []TopProduct `json:"top_products"`
}

// AdminStats - результат генерации админского отчета за оба окна
type AdminStats struct {
	Daily   AdminReportData `json:"daily"`
	Monthly AdminReportData `json:"monthly"`
}

// CurrentAdminStats - живые счетчики платформы, не привязанные к окну
type CurrentAdminStats struct {
	OpeningRestaurants int64 `json:"opening_restaurants"`
	TotalUsers         int64 `json:"total_users"`
	TotalRestaurants   int64 `json:"total_restaurants"`
}

// NotificationEvent - событие для Notification Service (fire-and-forget)
type NotificationEvent struct {
	RecipientID string    `json:"recipient_id"`
	Title       string    `json:"title"`
	TargetURL   string    `json:"target_url"`
	Timestamp   time.Time `json:"timestamp"`
}
