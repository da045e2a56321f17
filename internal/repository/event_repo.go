package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milanhq/milan/internal/lifecycle"
	"github.com/milanhq/milan/internal/models"
)

type EventRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	FindPublished(ctx context.Context) ([]models.Event, error)
	FindByHost(ctx context.Context, hostID uuid.UUID) ([]models.Event, error)
	FindByStatus(ctx context.Context, status lifecycle.Status) ([]models.Event, error)

	// TransitionStatus is the single conditional write behind every status
	// change: rows move only when their current status still matches `from`.
	// The boolean result is false when a concurrent writer got there first.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to lifecycle.Status, updates map[string]any) (bool, error)

	// IncrementRegistrations bumps the derived counter, guarded by the
	// capacity ceiling. False means the event is full.
	IncrementRegistrations(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)

	// Batch sweeps. Both are idempotent: a second run matches zero rows.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
	CompletePast(ctx context.Context, now time.Time) (int64, error)

	GetDB() *gorm.DB
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *eventRepository) Create(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return tx.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindPublished(ctx context.Context) ([]models.Event, error) {
	return r.findWhere(ctx, "status = ?", lifecycle.StatusPublished)
}

func (r *eventRepository) FindByHost(ctx context.Context, hostID uuid.UUID) ([]models.Event, error) {
	return r.findWhere(ctx, "host_id = ?", hostID)
}

func (r *eventRepository) FindByStatus(ctx context.Context, status lifecycle.Status) ([]models.Event, error) {
	return r.findWhere(ctx, "status = ?", status)
}

func (r *eventRepository) findWhere(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("event_date ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to lifecycle.Status, updates map[string]any) (bool, error) {
	if !lifecycle.CanTransition(from, to) {
		return false, fmt.Errorf("illegal status transition %s -> %s", from, to)
	}

	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to

	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *eventRepository) IncrementRegistrations(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND current_registrations < max_capacity", id).
		UpdateColumn("current_registrations", gorm.Expr("current_registrations + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *eventRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("status = ? AND review_deadline < ?", lifecycle.StatusSubmitted, now).
		UpdateColumn("status", lifecycle.StatusExpired)
	return res.RowsAffected, res.Error
}

func (r *eventRepository) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("status = ? AND event_date < ?", lifecycle.StatusPublished, now).
		UpdateColumn("status", lifecycle.StatusCompleted)
	return res.RowsAffected, res.Error
}
