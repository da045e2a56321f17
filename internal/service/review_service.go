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
	ErrNotAdmin       = errors.New("admin capability required")
	ErrReasonTooShort = errors.New("rejection reason must be at least 10 characters")
)

// StatusConflictError is returned when a review lands on an event that is no
// longer in submitted status, typically because a concurrent review won.
type StatusConflictError struct {
	Current lifecycle.Status
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("cannot review event with status %s", e.Current)
}

type ReviewService interface {
	Approve(ctx context.Context, admin *models.Profile, eventID uuid.UUID) (*models.Event, error)
	Reject(ctx context.Context, admin *models.Profile, eventID uuid.UUID, reason string) (*models.Event, error)
}

type reviewService struct {
	events repository.EventRepository
	log    *zap.Logger
}

func NewReviewService(events repository.EventRepository, log *zap.Logger) ReviewService {
	return &reviewService{events: events, log: log}
}

func (s *reviewService) Approve(ctx context.Context, admin *models.Profile, eventID uuid.UUID) (*models.Event, error) {
	if !admin.IsAdmin {
		return nil, ErrNotAdmin
	}

	now := time.Now().UTC()
	return s.transition(ctx, eventID, lifecycle.StatusPublished, map[string]any{
		"reviewed_at":      now,
		"reviewed_by":      admin.ID,
		"rejection_reason": "",
	})
}

func (s *reviewService) Reject(ctx context.Context, admin *models.Profile, eventID uuid.UUID, reason string) (*models.Event, error) {
	if !admin.IsAdmin {
		return nil, ErrNotAdmin
	}
	if len(strings.TrimSpace(reason)) < 10 {
		return nil, ErrReasonTooShort
	}

	now := time.Now().UTC()
	return s.transition(ctx, eventID, lifecycle.StatusRejected, map[string]any{
		"reviewed_at":      now,
		"reviewed_by":      admin.ID,
		"rejection_reason": strings.TrimSpace(reason),
	})
}

func (s *reviewService) transition(ctx context.Context, eventID uuid.UUID, to lifecycle.Status, updates map[string]any) (*models.Event, error) {
	ok, err := s.events.TransitionStatus(ctx, eventID, lifecycle.StatusSubmitted, to, updates)
	if err != nil {
		return nil, err
	}

	event, findErr := s.events.FindByID(ctx, eventID)
	if findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, findErr
	}

	if !ok {
		// A concurrent review (or sweep) won; report the status it left.
		return nil, &StatusConflictError{Current: event.Status}
	}

	s.log.Info("event reviewed",
		zap.String("event_id", eventID.String()),
		zap.String("status", string(to)))
	return event, nil
}
