package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/milanhq/milan/internal/models"
)

type CronLogRepository interface {
	Create(ctx context.Context, entry *models.CronLog) error
	FindRecent(ctx context.Context, limit int) ([]models.CronLog, error)
}

type cronLogRepository struct {
	db *gorm.DB
}

func NewCronLogRepository(db *gorm.DB) CronLogRepository {
	return &cronLogRepository{db: db}
}

func (r *cronLogRepository) Create(ctx context.Context, entry *models.CronLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *cronLogRepository) FindRecent(ctx context.Context, limit int) ([]models.CronLog, error) {
	var entries []models.CronLog
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
