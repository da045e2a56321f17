package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/milanhq/milan/internal/models"
	"github.com/milanhq/milan/internal/notifier"
	"github.com/milanhq/milan/internal/payment"
	"github.com/milanhq/milan/internal/repository"
)

var (
	ErrFreeEvent        = errors.New("event is free; use the registration endpoint")
	ErrInvalidSignature = errors.New("payment signature verification failed")
	ErrOrderNotFound    = errors.New("payment order not found")
	ErrMalformedWebhook = errors.New("malformed webhook payload")
)

const (
	webhookPaymentCaptured = "payment.captured"
	webhookPaymentFailed   = "payment.failed"
)

type PaymentService interface {
	// CreateOrder opens (or re-opens, replacing any stale pending/failed
	// attempt) a payment order for a paid event.
	CreateOrder(ctx context.Context, eventID uuid.UUID, in RegisterInput) (*models.Registration, *payment.Order, error)

	// VerifyRedirect is the client-side completion path, called right after
	// the checkout widget reports success.
	VerifyRedirect(ctx context.Context, orderRef, transactionRef, signature string) (*models.Registration, error)

	// HandleWebhook is the gateway-side completion path. Deliveries are
	// at-least-once and may race VerifyRedirect in either order.
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type paymentService struct {
	regs           repository.RegistrationRepository
	events         repository.EventRepository
	gateway        payment.Gateway
	notify         notifier.Notifier
	log            *zap.Logger
	checkoutSecret string
	webhookSecret  string
}

func NewPaymentService(
	regs repository.RegistrationRepository,
	events repository.EventRepository,
	gateway payment.Gateway,
	notify notifier.Notifier,
	checkoutSecret, webhookSecret string,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		regs:           regs,
		events:         events,
		gateway:        gateway,
		notify:         notify,
		checkoutSecret: checkoutSecret,
		webhookSecret:  webhookSecret,
		log:            log,
	}
}

func (s *paymentService) CreateOrder(ctx context.Context, eventID uuid.UUID, in RegisterInput) (*models.Registration, *payment.Order, error) {
	event, err := loadOpenEvent(ctx, s.events, eventID)
	if err != nil {
		return nil, nil, err
	}
	if event.Price == 0 {
		return nil, nil, ErrFreeEvent
	}

	email := NormalizeEmail(in.Email)

	// A returning attendee must hear "already registered" even when the
	// event has since filled, so this check precedes the capacity one. The
	// transaction below re-checks under the same guard.
	settled, err := s.regs.HasSettled(ctx, s.regs.GetDB(), event.ID, email)
	if err != nil {
		return nil, nil, err
	}
	if settled {
		return nil, nil, ErrAlreadyRegistered
	}

	// Soft capacity check: pending rows do not hold a slot, so the
	// authoritative check happens again at settlement.
	if event.CurrentRegistrations >= event.MaxCapacity {
		return nil, nil, ErrEventFull
	}

	reg := &models.Registration{
		ID:            uuid.New(),
		EventID:       event.ID,
		Name:          strings.TrimSpace(in.Name),
		Email:         email,
		Contact:       strings.TrimSpace(in.Contact),
		PaymentStatus: models.PaymentPending,
	}

	// Amount comes from the event row; client input never carries a price.
	order, err := s.gateway.CreateOrder(ctx, event.Price, "INR", reg.ID.String())
	if err != nil {
		return nil, nil, fmt.Errorf("gateway order: %w", err)
	}
	reg.OrderRef = order.ID

	err = s.regs.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settled, err := s.regs.HasSettled(ctx, tx, event.ID, reg.Email)
		if err != nil {
			return err
		}
		if settled {
			return ErrAlreadyRegistered
		}

		// Drop any earlier pending/failed attempt for this attendee; its
		// order reference becomes unreconcilable from here on.
		if err := s.regs.DeleteUnsettled(ctx, tx, event.ID, reg.Email); err != nil {
			return err
		}
		return s.regs.Create(ctx, tx, reg)
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("payment order created",
		zap.String("registration_id", reg.ID.String()),
		zap.String("order_ref", order.ID),
		zap.Int64("amount", order.Amount))
	return reg, order, nil
}

func (s *paymentService) VerifyRedirect(ctx context.Context, orderRef, transactionRef, signature string) (*models.Registration, error) {
	if !payment.VerifyRedirectSignature(s.checkoutSecret, orderRef, transactionRef, signature) {
		s.log.Warn("redirect signature mismatch", zap.String("order_ref", orderRef))
		return nil, ErrInvalidSignature
	}

	reg, won, err := s.settle(ctx, orderRef, transactionRef)
	if err != nil {
		return nil, err
	}
	if won {
		s.sendConfirmation(ctx, reg)
	}
	return reg, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	// The webhook secret is independent from the checkout secret, and the
	// HMAC runs over the raw bytes captured before any parsing.
	if !payment.VerifyWebhookSignature(s.webhookSecret, body, signature) {
		s.log.Warn("webhook signature mismatch")
		return ErrInvalidSignature
	}

	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return ErrMalformedWebhook
	}

	switch evt.Event {
	case webhookPaymentCaptured:
		reg, won, err := s.settle(ctx, evt.Payload.OrderID, evt.Payload.PaymentID)
		if errors.Is(err, ErrOrderNotFound) {
			// Stale reference (order replaced by a retry) or an order this
			// deployment never issued. Acknowledge so the gateway stops
			// retrying.
			s.log.Info("webhook for unknown order acknowledged", zap.String("order_ref", evt.Payload.OrderID))
			return nil
		}
		if err != nil {
			return err
		}
		if won {
			s.sendConfirmation(ctx, reg)
		}
		return nil

	case webhookPaymentFailed:
		flipped, err := s.regs.MarkFailed(ctx, evt.Payload.OrderID)
		if err != nil {
			return err
		}
		if !flipped {
			// Already paid, already failed, or replaced. Either way the
			// failure signal has nothing left to do.
			s.log.Info("failure webhook matched no pending row", zap.String("order_ref", evt.Payload.OrderID))
		}
		return nil

	default:
		// Unknown event types are acknowledged without state change so the
		// sender does not retry-storm us.
		s.log.Info("ignoring webhook event", zap.String("type", evt.Event))
		return nil
	}
}

// settle performs the idempotent pending -> paid transition. The returned
// boolean is true only for the caller whose conditional update matched the
// row; that caller alone owns the side effects.
func (s *paymentService) settle(ctx context.Context, orderRef, transactionRef string) (*models.Registration, bool, error) {
	var (
		reg *models.Registration
		won bool
	)

	err := s.regs.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flipped, err := s.regs.MarkPaid(ctx, tx, orderRef, transactionRef)
		if err != nil {
			// Entering the settled index can collide with an existing
			// paid/free row for the same attendee.
			if repository.IsDuplicateKey(err) {
				return ErrAlreadyRegistered
			}
			return err
		}

		r, err := s.regs.FindByOrderRef(ctx, tx, orderRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		reg = r

		if !flipped {
			// Lost the race (or the row was never pending). No state change,
			// no side effects.
			return nil
		}

		// The paid row now counts toward capacity. Failing here rolls the
		// settlement back and leaves the row pending.
		incremented, err := s.events.IncrementRegistrations(ctx, tx, r.EventID)
		if err != nil {
			return err
		}
		if !incremented {
			return ErrEventFull
		}

		won = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return reg, won, nil
}

func (s *paymentService) sendConfirmation(ctx context.Context, reg *models.Registration) {
	event, err := s.events.FindByID(ctx, reg.EventID)
	if err != nil {
		s.log.Error("confirmed registration but could not load event for mail",
			zap.String("registration_id", reg.ID.String()),
			zap.Error(err))
		return
	}
	s.notify.RegistrationConfirmed(ctx, reg, event)
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		OrderID   string `json:"order_id"`
		PaymentID string `json:"payment_id"`
	} `json:"payload"`
}
