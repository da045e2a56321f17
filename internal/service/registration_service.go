package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/milanhq/milan/internal/lifecycle"
	"github.com/milanhq/milan/internal/models"
	"github.com/milanhq/milan/internal/notifier"
	"github.com/milanhq/milan/internal/repository"
)

var (
	ErrEventNotPublished    = errors.New("event is not open for registration")
	ErrEventPast            = errors.New("event date has passed")
	ErrEventFull            = errors.New("event is at capacity")
	ErrAlreadyRegistered    = errors.New("this email is already registered for the event")
	ErrPaidEvent            = errors.New("event requires payment; create a payment order instead")
	ErrNotEventHost         = errors.New("event belongs to another host")
	ErrRegistrationNotFound = errors.New("registration not found")
)

type RegisterInput struct {
	Name    string
	Email   string
	Contact string
}

type RegistrationService interface {
	RegisterFree(ctx context.Context, eventID uuid.UUID, in RegisterInput) (*models.Registration, *models.Event, error)
	GetConfirmation(ctx context.Context, regID uuid.UUID) (*models.Registration, *models.Event, error)
	ListForEvent(ctx context.Context, requester *models.Profile, eventID uuid.UUID) ([]models.Registration, error)
}

type registrationService struct {
	regs   repository.RegistrationRepository
	events repository.EventRepository
	notify notifier.Notifier
	log    *zap.Logger
}

func NewRegistrationService(regs repository.RegistrationRepository, events repository.EventRepository, notify notifier.Notifier, log *zap.Logger) RegistrationService {
	return &registrationService{regs: regs, events: events, notify: notify, log: log}
}

func (s *registrationService) RegisterFree(ctx context.Context, eventID uuid.UUID, in RegisterInput) (*models.Registration, *models.Event, error) {
	event, err := loadOpenEvent(ctx, s.events, eventID)
	if err != nil {
		return nil, nil, err
	}
	if event.Price != 0 {
		return nil, nil, ErrPaidEvent
	}

	reg := &models.Registration{
		ID:            uuid.New(),
		EventID:       event.ID,
		Name:          strings.TrimSpace(in.Name),
		Email:         NormalizeEmail(in.Email),
		Contact:       strings.TrimSpace(in.Contact),
		PaymentStatus: models.PaymentFree,
	}

	err = s.regs.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A returning attendee must hear "already registered", not "full",
		// so the settled check runs before the capacity guard.
		settled, err := s.regs.HasSettled(ctx, tx, event.ID, reg.Email)
		if err != nil {
			return err
		}
		if settled {
			return ErrAlreadyRegistered
		}

		// Conditional increment next: if the event is full this fails
		// without touching the ledger. A duplicate insert below rolls the
		// increment back with the transaction.
		ok, err := s.events.IncrementRegistrations(ctx, tx, event.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrEventFull
		}

		if err := s.regs.Create(ctx, tx, reg); err != nil {
			if repository.IsDuplicateKey(err) {
				return ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	event.CurrentRegistrations++

	s.notify.RegistrationConfirmed(ctx, reg, event)
	s.log.Info("registration confirmed",
		zap.String("registration_id", reg.ID.String()),
		zap.String("event_id", event.ID.String()))
	return reg, event, nil
}

func (s *registrationService) GetConfirmation(ctx context.Context, regID uuid.UUID) (*models.Registration, *models.Event, error) {
	reg, err := s.regs.FindByID(ctx, regID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRegistrationNotFound
		}
		return nil, nil, err
	}

	event, err := s.events.FindByID(ctx, reg.EventID)
	if err != nil {
		return nil, nil, err
	}
	return reg, event, nil
}

func (s *registrationService) ListForEvent(ctx context.Context, requester *models.Profile, eventID uuid.UUID) ([]models.Registration, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !requester.IsAdmin && event.HostID != requester.ID {
		return nil, ErrNotEventHost
	}
	return s.regs.FindSettledByEvent(ctx, eventID)
}

// NormalizeEmail lowercases and trims an address; registrations are keyed
// case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// loadOpenEvent fetches an event and checks the shared registration
// preconditions: it exists, it is published and it has not happened yet.
func loadOpenEvent(ctx context.Context, events repository.EventRepository, id uuid.UUID) (*models.Event, error) {
	event, err := events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.Status != lifecycle.StatusPublished {
		return nil, ErrEventNotPublished
	}
	if event.EventDate.Before(time.Now()) {
		return nil, ErrEventPast
	}
	return event, nil
}
