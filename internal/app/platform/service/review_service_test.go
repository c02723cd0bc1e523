package service

import (
	"context"
	"testing"
	"time"

	"feastly/internal/app/platform/entity"
	"feastly/internal/app/platform/repository"
	"feastly/internal/app/platform/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderLifecycle struct {
	mock.Mock
}

func (m *mockOrderLifecycle) MarkReviewed(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type reviewServiceFixture struct {
	reviewRepo  *mocks.MockReviewRepository
	catalogRepo *mocks.MockCatalogRepository
	orderRepo   *mocks.MockOrderRepository
	orders      *mockOrderLifecycle
	svc         *ReviewService
}

func newReviewServiceFixture() *reviewServiceFixture {
	f := &reviewServiceFixture{
		reviewRepo:  new(mocks.MockReviewRepository),
		catalogRepo: new(mocks.MockCatalogRepository),
		orderRepo:   new(mocks.MockOrderRepository),
		orders:      new(mockOrderLifecycle),
	}
	f.svc = NewReviewService(f.reviewRepo, f.catalogRepo, f.orderRepo, f.orders,
		fakeClock{now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)})
	return f
}

func testReviewRequest(orderID, productID, restaurantID uuid.UUID) *entity.CreateReviewRequest {
	return &entity.CreateReviewRequest{
		OrderID:                 orderID.String(),
		ProductID:               productID.String(),
		RestaurantID:            restaurantID.String(),
		RestaurantServiceRating: 4,
		ProductRating:           5,
		ReviewText:              "Sambalnya mantap",
	}
}

func TestCreateReview_Success(t *testing.T) {
	f := newReviewServiceFixture()

	customerID := uuid.New()
	productID := uuid.New()
	restaurantID := uuid.New()
	order := testOrder(customerID, entity.OrderStatusCompleted, 1)

	f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Review")).Return(nil)
	// Создание отзыва: +1 к количеству, оценки к суммам обоих агрегатов
	f.catalogRepo.On("ApplyRatingDelta", mock.Anything, restaurantID, productID, 1, 4, 5).Return(nil)
	f.orders.On("MarkReviewed", mock.Anything, order.ID).Return(nil)

	review, err := f.svc.CreateReview(context.Background(), customerID, testReviewRequest(order.ID, productID, restaurantID))

	require.NoError(t, err)
	assert.Equal(t, customerID.String(), review.CustomerID)
	assert.Equal(t, 4, review.RestaurantServiceRating)
	assert.Equal(t, 5, review.ProductRating)
	f.catalogRepo.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestCreateReview_InvalidRating(t *testing.T) {
	f := newReviewServiceFixture()

	req := testReviewRequest(uuid.New(), uuid.New(), uuid.New())
	req.ProductRating = 6

	_, err := f.svc.CreateReview(context.Background(), uuid.New(), req)

	assert.ErrorIs(t, err, ErrInvalidRating)
	f.reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_MalformedOrderID(t *testing.T) {
	f := newReviewServiceFixture()

	req := testReviewRequest(uuid.New(), uuid.New(), uuid.New())
	req.OrderID = "not-a-uuid"

	_, err := f.svc.CreateReview(context.Background(), uuid.New(), req)

	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestCreateReview_ForeignOrder(t *testing.T) {
	f := newReviewServiceFixture()

	order := testOrder(uuid.New(), entity.OrderStatusCompleted, 0)
	f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := f.svc.CreateReview(context.Background(), uuid.New(),
		testReviewRequest(order.ID, uuid.New(), uuid.New()))

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateReview_OrderNotCompleted(t *testing.T) {
	f := newReviewServiceFixture()

	customerID := uuid.New()
	for _, status := range []entity.OrderStatus{
		entity.OrderStatusPending,
		entity.OrderStatusOrdering,
		entity.OrderStatusReviewed,
		entity.OrderStatusCancelled,
	} {
		order := testOrder(customerID, status, 0)
		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

		_, err := f.svc.CreateReview(context.Background(), customerID,
			testReviewRequest(order.ID, uuid.New(), uuid.New()))

		assert.ErrorIs(t, err, ErrOrderNotReviewable, "status %s", status)
	}
	f.reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_RatingDeltaFailure(t *testing.T) {
	f := newReviewServiceFixture()

	customerID := uuid.New()
	productID := uuid.New()
	restaurantID := uuid.New()
	order := testOrder(customerID, entity.OrderStatusCompleted, 0)

	f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.reviewRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.catalogRepo.On("ApplyRatingDelta", mock.Anything, restaurantID, productID, 1, 4, 5).
		Return(assert.AnError)

	_, err := f.svc.CreateReview(context.Background(), customerID,
		testReviewRequest(order.ID, productID, restaurantID))

	assert.Error(t, err)
	f.orders.AssertNotCalled(t, "MarkReviewed", mock.Anything, mock.Anything)
}

func TestUpdateReview_AppliesRatingDiff(t *testing.T) {
	f := newReviewServiceFixture()

	customerID := uuid.New()
	productID := uuid.New()
	restaurantID := uuid.New()
	review := &entity.Review{
		CustomerID:              customerID.String(),
		ProductID:               productID.String(),
		RestaurantID:            restaurantID.String(),
		OrderID:                 uuid.NewString(),
		RestaurantServiceRating: 4,
		ProductRating:           4,
	}

	f.reviewRepo.On("GetByID", mock.Anything, "rev-1").Return(review, nil)
	f.reviewRepo.On("Update", mock.Anything, review).Return(nil)
	// 4 -> 2 у товара: количество не меняется, к суммам уходит разница
	f.catalogRepo.On("ApplyRatingDelta", mock.Anything, restaurantID, productID, 0, 0, -2).Return(nil)

	updated, err := f.svc.UpdateReview(context.Background(), "rev-1", customerID, entity.RoleCustomer,
		&entity.UpdateReviewRequest{ProductRating: 2})

	require.NoError(t, err)
	assert.Equal(t, 2, updated.ProductRating)
	assert.Equal(t, 4, updated.RestaurantServiceRating)
	f.catalogRepo.AssertExpectations(t)
}

func TestUpdateReview_TextOnlySkipsAggregates(t *testing.T) {
	f := newReviewServiceFixture()

	customerID := uuid.New()
	review := &entity.Review{
		CustomerID:              customerID.String(),
		ProductID:               uuid.NewString(),
		RestaurantID:            uuid.NewString(),
		RestaurantServiceRating: 3,
		ProductRating:           3,
	}

	f.reviewRepo.On("GetByID", mock.Anything, "rev-2").Return(review, nil)
	f.reviewRepo.On("Update", mock.Anything, review).Return(nil)

	updated, err := f.svc.UpdateReview(context.Background(), "rev-2", customerID, entity.RoleCustomer,
		&entity.UpdateReviewRequest{ReviewText: "updated text"})

	require.NoError(t, err)
	assert.Equal(t, "updated text", updated.ReviewText)
	f.catalogRepo.AssertNotCalled(t, "ApplyRatingDelta",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateReview_ForbiddenForOtherCustomer(t *testing.T) {
	f := newReviewServiceFixture()

	review := &entity.Review{CustomerID: uuid.NewString()}
	f.reviewRepo.On("GetByID", mock.Anything, "rev-3").Return(review, nil)

	_, err := f.svc.UpdateReview(context.Background(), "rev-3", uuid.New(), entity.RoleCustomer,
		&entity.UpdateReviewRequest{ProductRating: 1})

	assert.ErrorIs(t, err, ErrUnauthorized)
	f.reviewRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteReview_RollsBackAggregates(t *testing.T) {
	f := newReviewServiceFixture()

	customerID := uuid.New()
	productID := uuid.New()
	restaurantID := uuid.New()
	review := &entity.Review{
		CustomerID:              customerID.String(),
		ProductID:               productID.String(),
		RestaurantID:            restaurantID.String(),
		RestaurantServiceRating: 4,
		ProductRating:           5,
	}

	f.reviewRepo.On("GetByID", mock.Anything, "rev-4").Return(review, nil)
	f.reviewRepo.On("Delete", mock.Anything, "rev-4").Return(nil)
	f.catalogRepo.On("ApplyRatingDelta", mock.Anything, restaurantID, productID, -1, -4, -5).Return(nil)

	err := f.svc.DeleteReview(context.Background(), "rev-4", customerID, entity.RoleCustomer)

	require.NoError(t, err)
	f.catalogRepo.AssertExpectations(t)
}

func TestDeleteReview_AdminCanDeleteAny(t *testing.T) {
	f := newReviewServiceFixture()

	review := &entity.Review{
		CustomerID:              uuid.NewString(),
		ProductID:               uuid.NewString(),
		RestaurantID:            uuid.NewString(),
		RestaurantServiceRating: 2,
		ProductRating:           1,
	}

	f.reviewRepo.On("GetByID", mock.Anything, "rev-5").Return(review, nil)
	f.reviewRepo.On("Delete", mock.Anything, "rev-5").Return(nil)
	f.catalogRepo.On("ApplyRatingDelta", mock.Anything, mock.Anything, mock.Anything, -1, -2, -1).Return(nil)

	err := f.svc.DeleteReview(context.Background(), "rev-5", uuid.New(), entity.RoleAdmin)

	require.NoError(t, err)
}

func TestDeleteReview_NotFound(t *testing.T) {
	f := newReviewServiceFixture()

	f.reviewRepo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrReviewNotFound)

	err := f.svc.DeleteReview(context.Background(), "missing", uuid.New(), entity.RoleCustomer)

	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestListReviews_InvalidRatingFilter(t *testing.T) {
	f := newReviewServiceFixture()

	_, _, err := f.svc.ListReviews(context.Background(), entity.ReviewFilter{Rating: 9}, 1, 10)

	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestListReviews_NormalizesPagination(t *testing.T) {
	f := newReviewServiceFixture()

	f.reviewRepo.On("List", mock.Anything, entity.ReviewFilter{}, 1, 10).
		Return([]entity.Review{}, int64(0), nil)

	_, _, err := f.svc.ListReviews(context.Background(), entity.ReviewFilter{}, -3, 500)

	require.NoError(t, err)
	f.reviewRepo.AssertExpectations(t)
}
