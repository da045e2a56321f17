package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milanhq/milan/internal/models"
)

type RegistrationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reg *models.Registration) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	FindByOrderRef(ctx context.Context, tx *gorm.DB, orderRef string) (*models.Registration, error)
	FindSettledByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error)

	// HasSettled reports whether a paid/free row already exists for
	// (event, email).
	HasSettled(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, email string) (bool, error)

	// DeleteUnsettled removes pending/failed rows for (event, email) so a
	// retry starts clean. Settled rows are never touched.
	DeleteUnsettled(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, email string) error

	// MarkPaid settles the row matching orderRef, guarded by "not already
	// paid" so a success signal can land even after a failure signal. The
	// boolean result is the race outcome: true means this caller performed
	// the transition, false means someone else already had.
	MarkPaid(ctx context.Context, tx *gorm.DB, orderRef, transactionRef string) (bool, error)

	// MarkFailed flips a still-pending row to failed; paid rows are never
	// downgraded.
	MarkFailed(ctx context.Context, orderRef string) (bool, error)

	GetDB() *gorm.DB
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *registrationRepository) Create(ctx context.Context, tx *gorm.DB, reg *models.Registration) error {
	return tx.WithContext(ctx).Create(reg).Error
}

func (r *registrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var reg models.Registration
	if err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) FindByOrderRef(ctx context.Context, tx *gorm.DB, orderRef string) (*models.Registration, error) {
	var reg models.Registration
	if err := tx.WithContext(ctx).First(&reg, "order_ref = ?", orderRef).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) FindSettledByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error) {
	var regs []models.Registration
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND payment_status IN ?", eventID, []models.PaymentStatus{models.PaymentPaid, models.PaymentFree}).
		Order("created_at ASC").
		Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *registrationRepository) HasSettled(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, email string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND email = ? AND payment_status IN ?",
			eventID, email, []models.PaymentStatus{models.PaymentPaid, models.PaymentFree}).
		Count(&count).Error
	return count > 0, err
}

func (r *registrationRepository) DeleteUnsettled(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, email string) error {
	return tx.WithContext(ctx).
		Where("event_id = ? AND email = ? AND payment_status IN ?",
			eventID, email, []models.PaymentStatus{models.PaymentPending, models.PaymentFailed}).
		Delete(&models.Registration{}).Error
}

func (r *registrationRepository) MarkPaid(ctx context.Context, tx *gorm.DB, orderRef, transactionRef string) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Registration{}).
		Where("order_ref = ? AND payment_status <> ?", orderRef, models.PaymentPaid).
		Updates(map[string]any{
			"payment_status":  models.PaymentPaid,
			"transaction_ref": transactionRef,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *registrationRepository) MarkFailed(ctx context.Context, orderRef string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("order_ref = ? AND payment_status = ?", orderRef, models.PaymentPending).
		UpdateColumn("payment_status", models.PaymentFailed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
