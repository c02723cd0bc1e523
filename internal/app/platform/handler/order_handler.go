package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"feastly/internal/app/platform/entity"
	"feastly/internal/app/platform/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// OrderServiceInterface - контракт сервиса заказов для HTTP слоя
type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, customerID uuid.UUID, req *entity.CreateOrderRequest) (*entity.Order, error)
	GetOrder(ctx context.Context, orderID, actorID uuid.UUID, actorRole string) (*entity.Order, error)
	GetCustomerOrders(ctx context.Context, customerID uuid.UUID, page, limit int) ([]entity.Order, int64, error)
	GetRestaurantOrders(ctx context.Context, restaurantID uuid.UUID, page, limit int) ([]entity.Order, int64, error)
	TransitionOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus string, actorID uuid.UUID, actorRole string) (*entity.Order, error)
}

type OrderHandler struct {
	orderService OrderServiceInterface
	validator    *validator.Validate
}

func NewOrderHandler(orderService OrderServiceInterface) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

// CreateOrder обрабатывает POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, _ := currentUser(c)

	var req entity.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "validation failed", Message: err.Error()})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.SuccessResponse{Message: "order created", Data: order})
}

// GetOrder обрабатывает GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid order id"})
		return
	}

	userID, role := currentUser(c)
	order, err := h.orderService.GetOrder(c.Request.Context(), orderID, userID, role)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetMyOrders обрабатывает GET /api/v1/orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, _ := currentUser(c)
	page, limit := parsePagination(c)

	orders, total, err := h.orderService.GetCustomerOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, entity.OrderListResponse{
		Orders:     orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	})
}

// GetRestaurantOrders обрабатывает GET /api/v1/merchant/restaurants/:id/orders
func (h *OrderHandler) GetRestaurantOrders(c *gin.Context) {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid restaurant id"})
		return
	}

	page, limit := parsePagination(c)
	orders, total, err := h.orderService.GetRestaurantOrders(c.Request.Context(), restaurantID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, entity.OrderListResponse{
		Orders:     orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	})
}

// UpdateOrderStatus обрабатывает PATCH /api/v1/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid order id"})
		return
	}

	var req entity.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "validation failed", Message: err.Error()})
		return
	}

	userID, role := currentUser(c)
	order, err := h.orderService.TransitionOrderStatus(c.Request.Context(), orderID, req.Status, userID, role)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "order status updated", Data: order})
}

func (h *OrderHandler) respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "order not found"})
	case errors.Is(err, service.ErrRestaurantNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "restaurant not found"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "access denied"})
	case errors.Is(err, service.ErrInvalidOrderStatus):
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid order status"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, entity.ErrorResponse{Error: "status transition not allowed"})
	case errors.Is(err, service.ErrOrderConflict):
		c.JSON(http.StatusConflict, entity.ErrorResponse{Error: "order was modified concurrently, retry"})
	default:
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "internal server error"})
	}
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
