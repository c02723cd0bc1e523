package entity

import "github.com/google/uuid"

// CreateOrderRequest приходит от Cart/Checkout после конвертации корзины
// Снапшоты цен и названий формирует checkout, здесь они не перепроверяются
type CreateOrderRequest struct {
	RestaurantID uuid.UUID          `json:"restaurant_id" validate:"required"`
	Address      string             `json:"address" validate:"required,max=500"`
	Note         string             `json:"note" validate:"max=500"`
	Items        []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID  uuid.UUID `json:"product_id" validate:"required"`
	Name       string    `json:"name" validate:"required,max=255"`
	Quantity   int       `json:"quantity" validate:"required,gt=0"`
	UnitPrice  float64   `json:"unit_price" validate:"gte=0"`
	FinalPrice float64   `json:"final_price" validate:"gte=0"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing ordering completed cancelled"`
}

type CreateReviewRequest struct {
	OrderID                 string `json:"order_id" validate:"required"`
	ProductID               string `json:"product_id" validate:"required"`
	RestaurantID            string `json:"restaurant_id" validate:"required"`
	RestaurantServiceRating int    `json:"restaurant_service_rating" validate:"required,min=1,max=5"`
	ProductRating           int    `json:"product_rating" validate:"required,min=1,max=5"`
	ReviewText              string `json:"review_text" validate:"max=500"`
	Image                   string `json:"image"`
}

// UpdateReviewRequest - нулевые значения означают "не менять"
type UpdateReviewRequest struct {
	RestaurantServiceRating int    `json:"restaurant_service_rating" validate:"omitempty,min=1,max=5"`
	ProductRating           int    `json:"product_rating" validate:"omitempty,min=1,max=5"`
	ReviewText              string `json:"review_text" validate:"max=500"`
	Image                   string `json:"image"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type OrderListResponse struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}

type ReviewListResponse struct {
	Reviews    []Review `json:"reviews"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
}

type MerchantReportListResponse struct {
	Reports    []MerchantReport `json:"reports"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

type AdminReportListResponse struct {
	Reports    []AdminReport `json:"reports"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}
