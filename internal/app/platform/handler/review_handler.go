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

// ReviewServiceInterface - контракт сервиса отзывов для HTTP слоя
type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, customerID uuid.UUID, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetReview(ctx context.Context, reviewID string) (*entity.Review, error)
	ListReviews(ctx context.Context, filter entity.ReviewFilter, page, limit int) ([]entity.Review, int64, error)
	UpdateReview(ctx context.Context, reviewID string, actorID uuid.UUID, actorRole string, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, reviewID string, actorID uuid.UUID, actorRole string) error
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// CreateReview обрабатывает POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, _ := currentUser(c)

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "validation failed", Message: err.Error()})
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.SuccessResponse{Message: "review created", Data: review})
}

// GetReview обрабатывает GET /api/v1/reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.reviewService.GetReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// ListReviews обрабатывает GET /api/v1/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	rating, _ := strconv.Atoi(c.DefaultQuery("rating", "0"))
	filter := entity.ReviewFilter{
		RestaurantID: c.Query("restaurant_id"),
		ProductID:    c.Query("product_id"),
		CustomerID:   c.Query("customer_id"),
		Rating:       rating,
	}

	page, limit := parsePagination(c)
	reviews, total, err := h.reviewService.ListReviews(c.Request.Context(), filter, page, limit)
	if err != nil {
		h.respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Reviews:    reviews,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	})
}

// UpdateReview обрабатывает PUT /api/v1/reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "validation failed", Message: err.Error()})
		return
	}

	userID, role := currentUser(c)
	review, err := h.reviewService.UpdateReview(c.Request.Context(), c.Param("id"), userID, role, &req)
	if err != nil {
		h.respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "review updated", Data: review})
}

// DeleteReview обрабатывает DELETE /api/v1/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, role := currentUser(c)
	if err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("id"), userID, role); err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "review deleted"})
}

func (h *ReviewHandler) respondReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "review not found"})
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "order not found"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "access denied"})
	case errors.Is(err, service.ErrOrderNotReviewable):
		c.JSON(http.StatusUnprocessableEntity, entity.ErrorResponse{Error: "order is not reviewable"})
	case errors.Is(err, service.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "rating must be between 1 and 5"})
	case errors.Is(err, service.ErrInvalidIdentifier):
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "malformed identifier"})
	default:
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "internal server error"})
	}
}
