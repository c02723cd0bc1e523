package service

import (
	"context"
	"time"

	"feastly/internal/app/platform/entity"

	"github.com/google/uuid"
)

// Clock - источник времени, инжектируется для тестируемости
// расчетов окон отчетов и completed_at
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// NewSystemClock возвращает Clock на основе системного времени
func NewSystemClock() Clock {
	return systemClock{}
}

// OrderLifecycle - контракт менеджера жизненного цикла заказа,
// используемый Rating Aggregator при создании отзыва
type OrderLifecycle interface {
	MarkReviewed(ctx context.Context, orderID uuid.UUID) error
}

// ReportServiceInterface используется планировщиком и handlers
type ReportServiceInterface interface {
	GenerateMerchantReport(ctx context.Context, restaurantID uuid.UUID) (*entity.MerchantStats, error)
	GenerateAdminReport(ctx context.Context) (*entity.AdminStats, error)
	GetMerchantReportHistory(ctx context.Context, restaurantID string, filter entity.ReportFilter, page, limit int) ([]entity.MerchantReport, int64, error)
	GetAdminReportHistory(ctx context.Context, filter entity.ReportFilter, page, limit int) ([]entity.AdminReport, int64, error)
	GetCurrentAdminStats(ctx context.Context) (*entity.CurrentAdminStats, error)
}
