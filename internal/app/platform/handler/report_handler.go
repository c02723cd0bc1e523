package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"feastly/internal/app/platform/entity"
	"feastly/internal/app/platform/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportRunner - ручной запуск полного цикла генерации отчетов
type ReportRunner interface {
	RunOnce(ctx context.Context) error
}

type ReportHandler struct {
	reportService service.ReportServiceInterface
	runner        ReportRunner
}

func NewReportHandler(reportService service.ReportServiceInterface, runner ReportRunner) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		runner:        runner,
	}
}

// GenerateMerchantReport обрабатывает POST /api/v1/merchant/restaurants/:id/reports/generate
func (h *ReportHandler) GenerateMerchantReport(c *gin.Context) {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid restaurant id"})
		return
	}

	stats, err := h.reportService.GenerateMerchantReport(c.Request.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, service.ErrRestaurantNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "restaurant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "failed to generate report"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "report generated", Data: stats})
}

// GetMerchantReports обрабатывает GET /api/v1/merchant/restaurants/:id/reports
func (h *ReportHandler) GetMerchantReports(c *gin.Context) {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid restaurant id"})
		return
	}

	filter, err := parseReportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: err.Error()})
		return
	}

	page, limit := parsePagination(c)
	reports, total, err := h.reportService.GetMerchantReportHistory(c.Request.Context(), restaurantID.String(), filter, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "failed to get reports"})
		return
	}

	c.JSON(http.StatusOK, entity.MerchantReportListResponse{
		Reports:    reports,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	})
}

// GetAdminReports обрабатывает GET /api/v1/admin/reports
func (h *ReportHandler) GetAdminReports(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: err.Error()})
		return
	}

	page, limit := parsePagination(c)
	reports, total, err := h.reportService.GetAdminReportHistory(c.Request.Context(), filter, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "failed to get reports"})
		return
	}

	c.JSON(http.StatusOK, entity.AdminReportListResponse{
		Reports:    reports,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	})
}

// RunReportBatch обрабатывает POST /api/v1/admin/reports/generate
// Запускает тот же цикл, что и планировщик
func (h *ReportHandler) RunReportBatch(c *gin.Context) {
	if err := h.runner.RunOnce(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "report batch failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "report batch completed"})
}

// GetCurrentAdminStats обрабатывает GET /api/v1/admin/stats/current
func (h *ReportHandler) GetCurrentAdminStats(c *gin.Context) {
	stats, err := h.reportService.GetCurrentAdminStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "failed to get current stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseReportFilter(c *gin.Context) (entity.ReportFilter, error) {
	var filter entity.ReportFilter

	switch period := c.Query("period"); period {
	case "":
	case string(entity.ReportPeriodDaily):
		filter.Period = entity.ReportPeriodDaily
	case string(entity.ReportPeriodMonthly):
		filter.Period = entity.ReportPeriodMonthly
	default:
		return filter, errors.New("period must be daily or monthly")
	}

	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errors.New("start_date must be in YYYY-MM-DD format")
		}
		filter.StartDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errors.New("end_date must be in YYYY-MM-DD format")
		}
		filter.EndDate = &t
	}

	return filter, nil
}
