package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"feastly/internal/app/platform/repository"
	"feastly/internal/app/platform/service"
	"feastly/pkg/logger"
	"feastly/pkg/metrics"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const defaultRunTimeout = 10 * time.Minute

// ReportScheduler запускает батчевую генерацию отчетов по расписанию
// Генерация по ресторанам идет параллельно с ограничением конкурентности,
// сбой одного ресторана не останавливает остальных
type ReportScheduler struct {
	reportService service.ReportServiceInterface
	catalogRepo   repository.CatalogRepository
	cron          *cron.Cron
	concurrency   int
	runTimeout    time.Duration

	mu      sync.Mutex
	started bool
}

func NewReportScheduler(
	reportService service.ReportServiceInterface,
	catalogRepo repository.CatalogRepository,
	concurrency int,
) *ReportScheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ReportScheduler{
		reportService: reportService,
		catalogRepo:   catalogRepo,
		cron:          cron.New(),
		concurrency:   concurrency,
		runTimeout:    defaultRunTimeout,
	}
}

// Start регистрирует расписания и запускает планировщик
// Повторный вызов без Stop - ошибка
func (p *ReportScheduler) Start(dailySpec, monthlySpec string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("report scheduler already started")
	}

	if _, err := p.cron.AddFunc(dailySpec, func() {
		p.runBatch("daily")
	}); err != nil {
		return fmt.Errorf("failed to schedule daily reports: %w", err)
	}

	if _, err := p.cron.AddFunc(monthlySpec, func() {
		p.runBatch("monthly")
	}); err != nil {
		return fmt.Errorf("failed to schedule monthly reports: %w", err)
	}

	p.cron.Start()
	p.started = true

	logger.Info().
		Str("daily_spec", dailySpec).
		Str("monthly_spec", monthlySpec).
		Int("concurrency", p.concurrency).
		Msg("Report scheduler started")

	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего запуска
func (p *ReportScheduler) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	ctx := p.cron.Stop()
	<-ctx.Done()
	p.started = false

	logger.Info().Msg("Report scheduler stopped")
}

// RunOnce выполняет один полный цикл генерации вне расписания
func (p *ReportScheduler) RunOnce(ctx context.Context) error {
	metrics.ReportBatchRuns.WithLabelValues("manual").Inc()
	return p.generateAll(ctx)
}

func (p *ReportScheduler) runBatch(trigger string) {
	metrics.ReportBatchRuns.WithLabelValues(trigger).Inc()

	ctx, cancel := context.WithTimeout(context.Background(), p.runTimeout)
	defer cancel()

	if err := p.generateAll(ctx); err != nil {
		logger.Error().Err(err).
			Str("trigger", trigger).
			Msg("Scheduled report batch failed")
	}
}

// generateAll генерирует отчеты всех ресторанов, затем админский
// Админский отчет ждет завершения всех ресторанов, чтобы история
// платформы и ресторанов за окно формировалась одним проходом
func (p *ReportScheduler) generateAll(ctx context.Context) error {
	start := time.Now()

	restaurantIDs, err := p.catalogRepo.GetAllRestaurantIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list restaurants: %w", err)
	}

	var (
		wg     sync.WaitGroup
		sem    = make(chan struct{}, p.concurrency)
		mu     sync.Mutex
		failed int
	)

	for _, id := range restaurantIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(restaurantID uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := p.reportService.GenerateMerchantReport(ctx, restaurantID); err != nil {
				logger.Error().Err(err).
					Str("restaurant_id", restaurantID.String()).
					Msg("Failed to generate merchant report")
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	if _, err := p.reportService.GenerateAdminReport(ctx); err != nil {
		return fmt.Errorf("failed to generate admin report: %w", err)
	}

	logger.Info().
		Int("restaurants", len(restaurantIDs)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Report batch completed")

	return nil
}
