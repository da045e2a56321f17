package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milanhq/milan/internal/models"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByToken(ctx context.Context, token string) (*models.Profile, error)

	// ConsumeDailyQuota atomically claims one submission slot for the given
	// UTC day. It resets the counter when the stored day is stale and
	// refuses once `limit` slots are taken. False means quota exhausted.
	// Run inside the event-creation transaction so a failed insert refunds
	// the slot.
	ConsumeDailyQuota(ctx context.Context, tx *gorm.DB, hostID uuid.UUID, day string, limit int) (bool, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByToken(ctx context.Context, token string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "api_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) ConsumeDailyQuota(ctx context.Context, tx *gorm.DB, hostID uuid.UUID, day string, limit int) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ? AND (submission_day <> ? OR submissions_today < ?)", hostID, day, limit).
		Updates(map[string]any{
			"submissions_today": gorm.Expr("CASE WHEN submission_day = ? THEN submissions_today + 1 ELSE 1 END", day),
			"submission_day":    day,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
