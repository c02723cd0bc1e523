package util

import (
	"context"
	"time"

	"feastly/internal/app/platform/entity"
)

// StatsCache интерфейс кеша живых счетчиков платформы
// Используется для dependency injection и упрощения тестирования
type StatsCache interface {
	GetCurrentStats(ctx context.Context) (*entity.CurrentAdminStats, error)
	SetCurrentStats(ctx context.Context, stats *entity.CurrentAdminStats, ttl time.Duration) error
	Close() error
}
