package repository

import (
	"context"

	"feastly/internal/app/platform/entity"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository создает репозиторий пользователей
// Сервису платформы нужен только подсчет для админской статистики
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CountUsers считает всех пользователей платформы
func (r *userRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Count(&count)

	return count, result.Error
}
