package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feastly/internal/app/platform/entity"
	"feastly/internal/app/platform/repository"
	"feastly/internal/app/platform/util"
	"feastly/pkg/logger"
	"feastly/pkg/metrics"

	"github.com/google/uuid"
)

const (
	topProductsLimit = 5
	serviceName      = "platform-service"
)

// ReportService агрегирует завершенные заказы в снапшоты отчетов
// Каждая генерация покрывает дневное и месячное окно текущего момента
type ReportService struct {
	orderRepo   repository.OrderRepository
	catalogRepo repository.CatalogRepository
	userRepo    repository.UserRepository
	reportRepo  repository.ReportRepository
	cache       util.StatsCache
	cacheTTL    time.Duration
	clock       Clock
}

func NewReportService(
	orderRepo repository.OrderRepository,
	catalogRepo repository.CatalogRepository,
	userRepo repository.UserRepository,
	reportRepo repository.ReportRepository,
	cache util.StatsCache,
	cacheTTL time.Duration,
	clock Clock,
) *ReportService {
	return &ReportService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		userRepo:    userRepo,
		reportRepo:  reportRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		clock:       clock,
	}
}

// dateRange возвращает границы окна отчета для момента now
// Дневное окно - [00:00:00.000, 23:59:59.999] локального дня,
// месячное - от первого до последнего дня месяца включительно
func dateRange(now time.Time, period entity.ReportPeriod) (time.Time, time.Time) {
	loc := now.Location()
	if period == entity.ReportPeriodMonthly {
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		to := from.AddDate(0, 1, 0).Add(-time.Millisecond)
		return from, to
	}
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1).Add(-time.Millisecond)
	return from, to
}

// GenerateMerchantReport считает статистику одного ресторана за оба окна
// и сохраняет снапшоты с upsert по ключу окна
func (s *ReportService) GenerateMerchantReport(ctx context.Context, restaurantID uuid.UUID) (*entity.MerchantStats, error) {
	timer := metrics.NewReportTimer("merchant")

	if _, err := s.catalogRepo.GetRestaurant(ctx, restaurantID); err != nil {
		timer.Failed()
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to load restaurant: %w", err)
	}

	now := s.clock.Now()
	stats := &entity.MerchantStats{}

	for _, period := range []entity.ReportPeriod{entity.ReportPeriodDaily, entity.ReportPeriodMonthly} {
		data, err := s.buildMerchantWindow(ctx, restaurantID, now, period)
		if err != nil {
			timer.Failed()
			return nil, err
		}
		if period == entity.ReportPeriodDaily {
			stats.Daily = *data
		} else {
			stats.Monthly = *data
		}
	}

	timer.Success()

	logger.Info().
		Str("restaurant_id", restaurantID.String()).
		Int("daily_orders", stats.Daily.CompletedOrders).
		Int("monthly_orders", stats.Monthly.CompletedOrders).
		Msg("Merchant report generated")

	return stats, nil
}

func (s *ReportService) buildMerchantWindow(ctx context.Context, restaurantID uuid.UUID, now time.Time, period entity.ReportPeriod) (*entity.MerchantReportData, error) {
	from, to := dateRange(now, period)

	count, revenue, err := s.orderRepo.AggregateCompleted(ctx, &restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate completed orders: %w", err)
	}

	top, err := s.orderRepo.TopProducts(ctx, &restaurantID, from, to, topProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	// В отчете ресторана принадлежность товара очевидна
	for i := range top {
		top[i].RestaurantID = ""
	}

	report := &entity.MerchantReport{
		RestaurantID:    restaurantID.String(),
		Period:          period,
		ReportDate:      from,
		CompletedOrders: int(count),
		Revenue:         revenue,
		TopProducts:     top,
		UpdatedAt:       s.clock.Now(),
	}
	if err := s.reportRepo.UpsertMerchantReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to upsert merchant report: %w", err)
	}

	return &entity.MerchantReportData{
		CompletedOrders: int(count),
		Revenue:         revenue,
		TopProducts:     top,
	}, nil
}

// GenerateAdminReport считает статистику всей платформы за оба окна
// Месячный снапшот дополнительно фиксирует размеры платформы
func (s *ReportService) GenerateAdminReport(ctx context.Context) (*entity.AdminStats, error) {
	timer := metrics.NewReportTimer("admin")

	now := s.clock.Now()
	stats := &entity.AdminStats{}

	totalUsers, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		timer.Failed()
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	totalRestaurants, err := s.catalogRepo.CountRestaurants(ctx)
	if err != nil {
		timer.Failed()
		return nil, fmt.Errorf("failed to count restaurants: %w", err)
	}

	for _, period := range []entity.ReportPeriod{entity.ReportPeriodDaily, entity.ReportPeriodMonthly} {
		from, to := dateRange(now, period)

		count, revenue, err := s.orderRepo.AggregateCompleted(ctx, nil, from, to)
		if err != nil {
			timer.Failed()
			return nil, fmt.Errorf("failed to aggregate completed orders: %w", err)
		}

		top, err := s.orderRepo.TopProducts(ctx, nil, from, to, topProductsLimit)
		if err != nil {
			timer.Failed()
			return nil, fmt.Errorf("failed to query top products: %w", err)
		}

		report := &entity.AdminReport{
			Period:       period,
			ReportDate:   from,
			TotalOrders:  int(count),
			TotalRevenue: revenue,
			TopProducts:  top,
			UpdatedAt:    s.clock.Now(),
		}
		if period == entity.ReportPeriodMonthly {
			report.TotalUsers = totalUsers
			report.TotalRestaurants = totalRestaurants
		}
		if err := s.reportRepo.UpsertAdminReport(ctx, report); err != nil {
			timer.Failed()
			return nil, fmt.Errorf("failed to upsert admin report: %w", err)
		}

		data := entity.AdminReportData{
			TotalOrders:  int(count),
			TotalRevenue: revenue,
			TopProducts:  top,
		}
		if period == entity.ReportPeriodDaily {
			stats.Daily = data
		} else {
			stats.Monthly = data
		}
	}

	timer.Success()

	logger.Info().
		Int("daily_orders", stats.Daily.TotalOrders).
		Int("monthly_orders", stats.Monthly.TotalOrders).
		Msg("Admin report generated")

	return stats, nil
}

// GetMerchantReportHistory возвращает сохраненные отчеты ресторана
func (s *ReportService) GetMerchantReportHistory(ctx context.Context, restaurantID string, filter entity.ReportFilter, page, limit int) ([]entity.MerchantReport, int64, error) {
	page, limit = normalizePagination(page, limit)
	return s.reportRepo.ListMerchantReports(ctx, restaurantID, filter, page, limit)
}

// GetAdminReportHistory возвращает сохраненные отчеты платформы
func (s *ReportService) GetAdminReportHistory(ctx context.Context, filter entity.ReportFilter, page, limit int) ([]entity.AdminReport, int64, error) {
	page, limit = normalizePagination(page, limit)
	return s.reportRepo.ListAdminReports(ctx, filter, page, limit)
}

// GetCurrentAdminStats возвращает живые счетчики платформы
// Счетчики кешируются в Redis, ошибки кеша не ломают выдачу
func (s *ReportService) GetCurrentAdminStats(ctx context.Context) (*entity.CurrentAdminStats, error) {
	cached, err := s.cache.GetCurrentStats(ctx)
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		logger.Warn().Err(err).Msg("Failed to read current stats from cache")
	}
	if cached != nil {
		metrics.RecordCacheHit(serviceName, "stats:admin")
		return cached, nil
	}
	metrics.RecordCacheMiss(serviceName, "stats:admin")

	opening, err := s.catalogRepo.CountRestaurantsByStatus(ctx, entity.RestaurantStatusOpening)
	if err != nil {
		return nil, fmt.Errorf("failed to count opening restaurants: %w", err)
	}
	totalRestaurants, err := s.catalogRepo.CountRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count restaurants: %w", err)
	}
	totalUsers, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	stats := &entity.CurrentAdminStats{
		OpeningRestaurants: opening,
		TotalUsers:         totalUsers,
		TotalRestaurants:   totalRestaurants,
	}

	if err := s.cache.SetCurrentStats(ctx, stats, s.cacheTTL); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		logger.Warn().Err(err).Msg("Failed to cache current stats")
	}

	return stats, nil
}
