package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"feastly/internal/app/platform/entity"
	"feastly/internal/app/platform/infrastructure"
	"feastly/internal/app/platform/repository"
	"feastly/pkg/logger"
	"feastly/pkg/metrics"

	"github.com/google/uuid"
)

// allowedTransitions - явная таблица переходов статусов
// Админ обходит таблицу, но не проверку существования статуса
var allowedTransitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderStatusPending:    {entity.OrderStatusProcessing, entity.OrderStatusCancelled},
	entity.OrderStatusProcessing: {entity.OrderStatusOrdering, entity.OrderStatusCancelled},
	entity.OrderStatusOrdering:   {entity.OrderStatusCompleted, entity.OrderStatusCancelled},
	entity.OrderStatusCompleted:  {entity.OrderStatusCancelled},
	entity.OrderStatusReviewed:   {},
	entity.OrderStatusCancelled:  {},
}

func transitionAllowed(from, to entity.OrderStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OrderService управляет жизненным циклом заказов
type OrderService struct {
	orderRepo   repository.OrderRepository
	catalogRepo repository.CatalogRepository
	publisher   infrastructure.MessagePublisher
	clock       Clock
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	catalogRepo repository.CatalogRepository,
	publisher infrastructure.MessagePublisher,
	clock Clock,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		publisher:   publisher,
		clock:       clock,
	}
}

// CreateOrder создает заказ в статусе pending
// Цены позиций - снапшоты из checkout, total считается по subtotal
func (s *OrderService) CreateOrder(ctx context.Context, customerID uuid.UUID, req *entity.CreateOrderRequest) (*entity.Order, error) {
	restaurant, err := s.catalogRepo.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to load restaurant: %w", err)
	}

	order := &entity.Order{
		ID:           uuid.New(),
		CustomerID:   customerID,
		RestaurantID: req.RestaurantID,
		Address:      req.Address,
		Note:         req.Note,
		Status:       entity.OrderStatusPending,
		OrderDate:    s.clock.Now(),
	}

	var total float64
	for _, item := range req.Items {
		subtotal := item.FinalPrice * float64(item.Quantity)
		total += subtotal
		order.Items = append(order.Items, entity.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			ProductID:  item.ProductID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			FinalPrice: item.FinalPrice,
			Subtotal:   subtotal,
		})
	}
	order.TotalPrice = total

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.OrdersCreated.Inc()

	s.publishNotification(ctx, restaurant.OwnerID.String(),
		"New order received", "/merchant/orders/"+order.ID.String())

	logger.Info().
		Str("order_id", order.ID.String()).
		Str("restaurant_id", order.RestaurantID.String()).
		Float64("total_price", order.TotalPrice).
		Msg("Order created")

	return order, nil
}

// GetOrder возвращает заказ, доступ есть у клиента-владельца,
// админа и владельца ресторана
func (s *OrderService) GetOrder(ctx context.Context, orderID, actorID uuid.UUID, actorRole string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !s.canAccessOrder(order, actorID, actorRole) {
		return nil, ErrUnauthorized
	}

	return order, nil
}

// GetCustomerOrders возвращает заказы клиента с пагинацией
func (s *OrderService) GetCustomerOrders(ctx context.Context, customerID uuid.UUID, page, limit int) ([]entity.Order, int64, error) {
	page, limit = normalizePagination(page, limit)
	return s.orderRepo.GetByCustomerID(ctx, customerID, page, limit)
}

// GetRestaurantOrders возвращает заказы ресторана с пагинацией
func (s *OrderService) GetRestaurantOrders(ctx context.Context, restaurantID uuid.UUID, page, limit int) ([]entity.Order, int64, error) {
	page, limit = normalizePagination(page, limit)
	return s.orderRepo.GetByRestaurantID(ctx, restaurantID, page, limit)
}

// TransitionOrderStatus выполняет переход статуса заказа
// Переход в completed фиксирует completed_at и увеличивает
// счетчики продаж всех позиций
func (s *OrderService) TransitionOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus string, actorID uuid.UUID, actorRole string) (*entity.Order, error) {
	status := entity.OrderStatus(newStatus)
	if !status.IsValid() {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !s.canAccessOrder(order, actorID, actorRole) {
		return nil, ErrUnauthorized
	}

	if actorRole != entity.RoleAdmin && !transitionAllowed(order.Status, status) {
		logger.Warn().
			Str("order_id", order.ID.String()).
			Str("from", string(order.Status)).
			Str("to", string(status)).
			Msg("Rejected order status transition")
		return nil, ErrInvalidTransition
	}

	var completedAt *time.Time
	if status == entity.OrderStatusCompleted {
		now := s.clock.Now()
		completedAt = &now
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Version, status, completedAt); err != nil {
		if errors.Is(err, repository.ErrOrderConflict) {
			return nil, ErrOrderConflict
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = status
	order.Version++
	if completedAt != nil {
		order.CompletedAt = completedAt
	}

	metrics.OrderTransitions.WithLabelValues(string(status)).Inc()

	switch status {
	case entity.OrderStatusOrdering:
		s.publishNotification(ctx, order.CustomerID.String(),
			"Your order is on the way", "/orders/"+order.ID.String())
	case entity.OrderStatusCompleted:
		metrics.OrdersCompleted.Inc()
		s.incrementSalesCounters(ctx, order)
		s.publishNotification(ctx, order.CustomerID.String(),
			"Your order has been delivered", "/orders/"+order.ID.String())
	}

	logger.Info().
		Str("order_id", order.ID.String()).
		Str("status", string(status)).
		Msg("Order status updated")

	return order, nil
}

// MarkReviewed переводит завершенный заказ в reviewed
// Вызывается только из сценария создания отзыва
func (s *OrderService) MarkReviewed(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}

	if order.Status == entity.OrderStatusReviewed {
		return nil
	}
	if order.Status != entity.OrderStatusCompleted {
		return ErrOrderNotReviewable
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Version, entity.OrderStatusReviewed, nil); err != nil {
		if errors.Is(err, repository.ErrOrderConflict) {
			return ErrOrderConflict
		}
		return fmt.Errorf("failed to mark order as reviewed: %w", err)
	}

	metrics.OrderTransitions.WithLabelValues(string(entity.OrderStatusReviewed)).Inc()

	return nil
}

func (s *OrderService) canAccessOrder(order *entity.Order, actorID uuid.UUID, actorRole string) bool {
	switch actorRole {
	case entity.RoleAdmin, entity.RoleRestaurantOwner:
		return true
	default:
		return order.CustomerID == actorID
	}
}

// incrementSalesCounters увеличивает sales_count всех позиций параллельно
// Удаленный из каталога товар пропускается, остальные позиции не страдают
func (s *OrderService) incrementSalesCounters(ctx context.Context, order *entity.Order) {
	var wg sync.WaitGroup
	for _, item := range order.Items {
		wg.Add(1)
		go func(item entity.OrderItem) {
			defer wg.Done()
			if err := s.catalogRepo.IncrementSalesCount(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					logger.Warn().
						Str("order_id", order.ID.String()).
						Str("product_id", item.ProductID.String()).
						Msg("Product missing from catalog, sales counter skipped")
					return
				}
				logger.Error().Err(err).
					Str("order_id", order.ID.String()).
					Str("product_id", item.ProductID.String()).
					Msg("Failed to increment sales counter")
			}
		}(item)
	}
	wg.Wait()
}

// publishNotification отправляет событие fire-and-forget:
// недоступность брокера не ломает бизнес-операцию
func (s *OrderService) publishNotification(ctx context.Context, recipientID, title, targetURL string) {
	event := entity.NotificationEvent{
		RecipientID: recipientID,
		Title:       title,
		TargetURL:   targetURL,
		Timestamp:   s.clock.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal notification event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, recipientID, data); err != nil {
		logger.Warn().Err(err).
			Str("recipient_id", recipientID).
			Msg("Failed to publish notification event")
	}
}

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
