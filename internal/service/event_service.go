package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/milanhq/milan/internal/lifecycle"
	"github.com/milanhq/milan/internal/models"
	"github.com/milanhq/milan/internal/repository"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrDuplicateTitle  = errors.New("an event with this title already exists")
	ErrQuotaExceeded   = errors.New("daily submission limit reached")
	ErrPriceNotAllowed = errors.New("only admins may set a price on an event")
	ErrInvalidEvent    = errors.New("invalid event")
)

type CreateEventInput struct {
	Title       string
	Description string
	Mode        models.EventMode
	MeetingLink string
	City        string
	Venue       string
	MaxCapacity int
	Price       int64
	ImageURL    string
	EventDate   time.Time
}

type EventService interface {
	CreateEvent(ctx context.Context, host *models.Profile, in CreateEventInput) (*models.Event, error)
	GetPublished(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListPublished(ctx context.Context) ([]models.Event, error)
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]models.Event, error)
	ListPending(ctx context.Context) ([]models.Event, error)
}

type eventService struct {
	events       repository.EventRepository
	profiles     repository.ProfileRepository
	reviewWindow time.Duration
	dailyLimit   int
	log          *zap.Logger
}

func NewEventService(events repository.EventRepository, profiles repository.ProfileRepository, reviewWindowDays, dailyLimit int, log *zap.Logger) EventService {
	return &eventService{
		events:       events,
		profiles:     profiles,
		reviewWindow: time.Duration(reviewWindowDays) * 24 * time.Hour,
		dailyLimit:   dailyLimit,
		log:          log,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, host *models.Profile, in CreateEventInput) (*models.Event, error) {
	// Admin capability is evaluated once here and drives both the quota
	// exemption and the price permission.
	isAdmin := host.IsAdmin

	if err := validateEventInput(in); err != nil {
		return nil, err
	}
	if in.Price != 0 && !isAdmin {
		return nil, ErrPriceNotAllowed
	}

	now := time.Now().UTC()
	event := &models.Event{
		ID:             uuid.New(),
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Mode:           in.Mode,
		MeetingLink:    in.MeetingLink,
		City:           in.City,
		Venue:          in.Venue,
		MaxCapacity:    in.MaxCapacity,
		Price:          in.Price,
		ImageURL:       in.ImageURL,
		Status:         lifecycle.StatusSubmitted,
		HostID:         host.ID,
		EventDate:      in.EventDate,
		SubmittedAt:    now,
		ReviewDeadline: now.Add(s.reviewWindow),
	}

	err := s.events.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !isAdmin {
			ok, err := s.profiles.ConsumeDailyQuota(ctx, tx, host.ID, now.Format("2006-01-02"), s.dailyLimit)
			if err != nil {
				return fmt.Errorf("consume quota: %w", err)
			}
			if !ok {
				return ErrQuotaExceeded
			}
		}

		if err := s.events.Create(ctx, tx, event); err != nil {
			// Rolling back also refunds the quota slot claimed above.
			if repository.IsDuplicateKey(err) {
				return ErrDuplicateTitle
			}
			return fmt.Errorf("create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("event submitted",
		zap.String("event_id", event.ID.String()),
		zap.String("host_id", host.ID.String()),
		zap.String("title", event.Title))
	return event, nil
}

func (s *eventService) GetPublished(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	// Unpublished events are invisible to the public surface.
	if event.Status != lifecycle.StatusPublished {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *eventService) ListPublished(ctx context.Context) ([]models.Event, error) {
	return s.events.FindPublished(ctx)
}

func (s *eventService) ListByHost(ctx context.Context, hostID uuid.UUID) ([]models.Event, error) {
	return s.events.FindByHost(ctx, hostID)
}

func (s *eventService) ListPending(ctx context.Context) ([]models.Event, error) {
	return s.events.FindByStatus(ctx, lifecycle.StatusSubmitted)
}

func validateEventInput(in CreateEventInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if in.MaxCapacity <= 0 {
		return fmt.Errorf("%w: max capacity must be positive", ErrInvalidEvent)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidEvent)
	}
	if !in.EventDate.After(time.Now()) {
		return fmt.Errorf("%w: event date must be in the future", ErrInvalidEvent)
	}

	switch in.Mode {
	case models.ModeOnline:
		if in.MeetingLink == "" {
			return fmt.Errorf("%w: online events require a meeting link", ErrInvalidEvent)
		}
	case models.ModeOffline:
		if in.City == "" || in.Venue == "" {
			return fmt.Errorf("%w: offline events require a city and venue", ErrInvalidEvent)
		}
	case models.ModeHybrid:
		if in.City == "" || in.MeetingLink == "" {
			return fmt.Errorf("%w: hybrid events require a city and meeting link", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: mode must be online, offline or hybrid", ErrInvalidEvent)
	}
	return nil
}
