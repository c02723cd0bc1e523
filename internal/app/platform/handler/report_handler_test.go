package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"feastly/internal/app/platform/entity"
	"feastly/internal/app/platform/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) GenerateMerchantReport(ctx context.Context, restaurantID uuid.UUID) (*entity.MerchantStats, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MerchantStats), args.Error(1)
}

func (m *MockReportService) GenerateAdminReport(ctx context.Context) (*entity.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AdminStats), args.Error(1)
}

func (m *MockReportService) GetMerchantReportHistory(ctx context.Context, restaurantID string, filter entity.ReportFilter, page, limit int) ([]entity.MerchantReport, int64, error) {
	args := m.Called(ctx, restaurantID, filter, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.MerchantReport), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportService) GetAdminReportHistory(ctx context.Context, filter entity.ReportFilter, page, limit int) ([]entity.AdminReport, int64, error) {
	args := m.Called(ctx, filter, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.AdminReport), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportService) GetCurrentAdminStats(ctx context.Context) (*entity.CurrentAdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CurrentAdminStats), args.Error(1)
}

type MockReportRunner struct {
	mock.Mock
}

func (m *MockReportRunner) RunOnce(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func setupReportRouter(svc service.ReportServiceInterface, runner ReportRunner, role string) *gin.Engine {
	h := NewReportHandler(svc, runner)
	router := gin.New()
	router.Use(stubAuth(uuid.New(), role))
	router.GET("/merchant/restaurants/:id/reports", h.GetMerchantReports)
	router.POST("/merchant/restaurants/:id/reports/generate", h.GenerateMerchantReport)
	router.GET("/admin/reports", h.GetAdminReports)
	router.POST("/admin/reports/generate", h.RunReportBatch)
	router.GET("/admin/stats/current", h.GetCurrentAdminStats)
	return router
}

func TestGenerateMerchantReportHandler_Success(t *testing.T) {
	mockService := new(MockReportService)
	router := setupReportRouter(mockService, new(MockReportRunner), entity.RoleRestaurantOwner)

	restaurantID := uuid.New()
	stats := &entity.MerchantStats{
		Daily: entity.MerchantReportData{CompletedOrders: 3, Revenue: 600},
	}
	mockService.On("GenerateMerchantReport", mock.Anything, restaurantID).Return(stats, nil)

	w := performJSON(router, http.MethodPost, "/merchant/restaurants/"+restaurantID.String()+"/reports/generate", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"completed_orders\":3")
}

func TestGenerateMerchantReportHandler_NotFound(t *testing.T) {
	mockService := new(MockReportService)
	router := setupReportRouter(mockService, new(MockReportRunner), entity.RoleRestaurantOwner)

	restaurantID := uuid.New()
	mockService.On("GenerateMerchantReport", mock.Anything, restaurantID).
		Return(nil, service.ErrRestaurantNotFound)

	w := performJSON(router, http.MethodPost, "/merchant/restaurants/"+restaurantID.String()+"/reports/generate", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMerchantReportsHandler_PeriodFilter(t *testing.T) {
	mockService := new(MockReportService)
	router := setupReportRouter(mockService, new(MockReportRunner), entity.RoleRestaurantOwner)

	restaurantID := uuid.New()
	mockService.On("GetMerchantReportHistory", mock.Anything, restaurantID.String(),
		entity.ReportFilter{Period: entity.ReportPeriodDaily}, 1, 10).
		Return([]entity.MerchantReport{}, int64(0), nil)

	w := performJSON(router, http.MethodGet,
		"/merchant/restaurants/"+restaurantID.String()+"/reports?period=daily", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestGetMerchantReportsHandler_InvalidPeriod(t *testing.T) {
	mockService := new(MockReportService)
	router := setupReportRouter(mockService, new(MockReportRunner), entity.RoleRestaurantOwner)

	w := performJSON(router, http.MethodGet,
		"/merchant/restaurants/"+uuid.NewString()+"/reports?period=weekly", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetMerchantReportHistory",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAdminReportsHandler_DateFilter(t *testing.T) {
	mockService := new(MockReportService)
	router := setupReportRouter(mockService, new(MockReportRunner), entity.RoleAdmin)

	mockService.On("GetAdminReportHistory", mock.Anything,
		mock.MatchedBy(func(f entity.ReportFilter) bool {
			return f.StartDate != nil && f.StartDate.Format("2006-01-02") == "2026-03-01" &&
				f.EndDate != nil && f.EndDate.Format("2006-01-02") == "2026-03-31"
		}), 1, 10).
		Return([]entity.AdminReport{}, int64(0), nil)

	w := performJSON(router, http.MethodGet,
		"/admin/reports?start_date=2026-03-01&end_date=2026-03-31", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestRunReportBatchHandler_Success(t *testing.T) {
	runner := new(MockReportRunner)
	router := setupReportRouter(new(MockReportService), runner, entity.RoleAdmin)

	runner.On("RunOnce", mock.Anything).Return(nil)

	w := performJSON(router, http.MethodPost, "/admin/reports/generate", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	runner.AssertExpectations(t)
}

func TestRunReportBatchHandler_Failure(t *testing.T) {
	runner := new(MockReportRunner)
	router := setupReportRouter(new(MockReportService), runner, entity.RoleAdmin)

	runner.On("RunOnce", mock.Anything).Return(assert.AnError)

	w := performJSON(router, http.MethodPost, "/admin/reports/generate", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetCurrentAdminStatsHandler(t *testing.T) {
	mockService := new(MockReportService)
	router := setupReportRouter(mockService, new(MockReportRunner), entity.RoleAdmin)

	mockService.On("GetCurrentAdminStats", mock.Anything).
		Return(&entity.CurrentAdminStats{OpeningRestaurants: 8, TotalUsers: 1500, TotalRestaurants: 12}, nil)

	w := performJSON(router, http.MethodGet, "/admin/stats/current", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var stats entity.CurrentAdminStats
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(8), stats.OpeningRestaurants)
	assert.Equal(t, int64(1500), stats.TotalUsers)
}
