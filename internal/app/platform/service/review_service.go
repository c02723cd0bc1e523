package service

import (
	"context"
	"errors"
	"fmt"

	"feastly/internal/app/platform/entity"
	"feastly/internal/app/platform/repository"
	"feastly/pkg/logger"
	"feastly/pkg/metrics"

	"github.com/google/uuid"
)

// ReviewService управляет отзывами и инкрементально поддерживает
// агрегаты рейтинга ресторанов и товаров
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	catalogRepo repository.CatalogRepository
	orderRepo   repository.OrderRepository
	orders      OrderLifecycle
	clock       Clock
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	catalogRepo repository.CatalogRepository,
	orderRepo repository.OrderRepository,
	orders OrderLifecycle,
	clock Clock,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		catalogRepo: catalogRepo,
		orderRepo:   orderRepo,
		orders:      orders,
		clock:       clock,
	}
}

func isValidRating(r int) bool {
	return r >= 1 && r <= 5
}

// CreateReview создает отзыв по завершенному заказу клиента,
// применяет дельты +1/+rating к агрегатам и переводит заказ в reviewed
func (s *ReviewService) CreateReview(ctx context.Context, customerID uuid.UUID, req *entity.CreateReviewRequest) (*entity.Review, error) {
	if !isValidRating(req.RestaurantServiceRating) || !isValidRating(req.ProductRating) {
		return nil, ErrInvalidRating
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, ErrInvalidIdentifier
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, ErrInvalidIdentifier
	}
	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return nil, ErrInvalidIdentifier
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.CustomerID != customerID {
		return nil, ErrUnauthorized
	}
	if order.Status != entity.OrderStatusCompleted {
		return nil, ErrOrderNotReviewable
	}

	now := s.clock.Now()
	review := &entity.Review{
		CustomerID:              customerID.String(),
		ProductID:               req.ProductID,
		RestaurantID:            req.RestaurantID,
		OrderID:                 req.OrderID,
		RestaurantServiceRating: req.RestaurantServiceRating,
		ProductRating:           req.ProductRating,
		ReviewText:              req.ReviewText,
		Image:                   req.Image,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.catalogRepo.ApplyRatingDelta(ctx, restaurantID, productID,
		1, req.RestaurantServiceRating, req.ProductRating); err != nil {
		return nil, fmt.Errorf("failed to apply rating delta: %w", err)
	}

	if err := s.orders.MarkReviewed(ctx, orderID); err != nil {
		logger.Error().Err(err).
			Str("order_id", req.OrderID).
			Msg("Failed to mark order as reviewed")
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.WithLabelValues("restaurant_service").Observe(float64(req.RestaurantServiceRating))
	metrics.ReviewsRating.WithLabelValues("product").Observe(float64(req.ProductRating))

	logger.Info().
		Str("review_id", review.ID.Hex()).
		Str("order_id", req.OrderID).
		Str("product_id", req.ProductID).
		Msg("Review created")

	return review, nil
}

// GetReview возвращает отзыв по идентификатору
func (s *ReviewService) GetReview(ctx context.Context, reviewID string) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// ListReviews возвращает отзывы по фильтрам с пагинацией
func (s *ReviewService) ListReviews(ctx context.Context, filter entity.ReviewFilter, page, limit int) ([]entity.Review, int64, error) {
	if filter.Rating != 0 && !isValidRating(filter.Rating) {
		return nil, 0, ErrInvalidRating
	}
	page, limit = normalizePagination(page, limit)
	return s.reviewRepo.List(ctx, filter, page, limit)
}

// UpdateReview изменяет отзыв автора и применяет дельты разницы оценок
// к агрегатам, количество отзывов при этом не меняется
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID string, actorID uuid.UUID, actorRole string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	if req.RestaurantServiceRating != 0 && !isValidRating(req.RestaurantServiceRating) {
		return nil, ErrInvalidRating
	}
	if req.ProductRating != 0 && !isValidRating(req.ProductRating) {
		return nil, ErrInvalidRating
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	if review.CustomerID != actorID.String() && actorRole != entity.RoleAdmin {
		return nil, ErrUnauthorized
	}

	var restaurantDiff, productDiff int
	if req.RestaurantServiceRating != 0 {
		restaurantDiff = req.RestaurantServiceRating - review.RestaurantServiceRating
		review.RestaurantServiceRating = req.RestaurantServiceRating
	}
	if req.ProductRating != 0 {
		productDiff = req.ProductRating - review.ProductRating
		review.ProductRating = req.ProductRating
	}
	if req.ReviewText != "" {
		review.ReviewText = req.ReviewText
	}
	if req.Image != "" {
		review.Image = req.Image
	}
	review.UpdatedAt = s.clock.Now()

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if restaurantDiff != 0 || productDiff != 0 {
		restaurantID, rErr := uuid.Parse(review.RestaurantID)
		productID, pErr := uuid.Parse(review.ProductID)
		if rErr != nil || pErr != nil {
			return nil, ErrInvalidIdentifier
		}
		if err := s.catalogRepo.ApplyRatingDelta(ctx, restaurantID, productID,
			0, restaurantDiff, productDiff); err != nil {
			return nil, fmt.Errorf("failed to apply rating delta: %w", err)
		}
	}

	logger.Info().
		Str("review_id", reviewID).
		Msg("Review updated")

	return review, nil
}

// DeleteReview удаляет отзыв и откатывает его вклад в агрегаты
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID string, actorID uuid.UUID, actorRole string) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}

	if review.CustomerID != actorID.String() && actorRole != entity.RoleAdmin {
		return ErrUnauthorized
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	restaurantID, rErr := uuid.Parse(review.RestaurantID)
	productID, pErr := uuid.Parse(review.ProductID)
	if rErr != nil || pErr != nil {
		return ErrInvalidIdentifier
	}
	if err := s.catalogRepo.ApplyRatingDelta(ctx, restaurantID, productID,
		-1, -review.RestaurantServiceRating, -review.ProductRating); err != nil {
		return fmt.Errorf("failed to apply rating delta: %w", err)
	}

	logger.Info().
		Str("review_id", reviewID).
		Msg("Review deleted")

	return nil
}
