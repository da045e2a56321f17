package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/milanhq/milan/internal/models"
	"github.com/milanhq/milan/internal/repository"
)

const (
	JobExpireSubmissions = "expire_submissions"
	JobCompleteEvents    = "complete_events"
)

// SweepService applies the time-based status transitions. The sweep logic is
// plain methods so the HTTP/bearer wrapper stays a thin adapter; any
// scheduler that can reach the endpoint can trigger a run.
type SweepService interface {
	ExpireSubmissions(ctx context.Context, triggeredBy string) (int64, error)
	CompleteEvents(ctx context.Context, triggeredBy string) (int64, error)
	RecentLogs(ctx context.Context, limit int) ([]models.CronLog, error)
}

type sweepService struct {
	events   repository.EventRepository
	cronLogs repository.CronLogRepository
	log      *zap.Logger
}

func NewSweepService(events repository.EventRepository, cronLogs repository.CronLogRepository, log *zap.Logger) SweepService {
	return &sweepService{events: events, cronLogs: cronLogs, log: log}
}

func (s *sweepService) ExpireSubmissions(ctx context.Context, triggeredBy string) (int64, error) {
	return s.run(ctx, JobExpireSubmissions, triggeredBy, s.events.ExpireStale)
}

func (s *sweepService) CompleteEvents(ctx context.Context, triggeredBy string) (int64, error) {
	return s.run(ctx, JobCompleteEvents, triggeredBy, s.events.CompletePast)
}

func (s *sweepService) RecentLogs(ctx context.Context, limit int) ([]models.CronLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.cronLogs.FindRecent(ctx, limit)
}

func (s *sweepService) run(ctx context.Context, name, triggeredBy string, sweep func(context.Context, time.Time) (int64, error)) (int64, error) {
	start := time.Now()
	affected, err := sweep(ctx, start.UTC())

	entry := &models.CronLog{
		JobName:       name,
		Outcome:       "success",
		AffectedCount: affected,
		DurationMS:    time.Since(start).Milliseconds(),
		TriggeredBy:   triggeredBy,
	}
	if err != nil {
		entry.Outcome = "error"
		entry.ErrorDetail = err.Error()
	}

	// Audit logging is best-effort: a failed insert must not fail the sweep
	// or trigger a retry.
	if logErr := s.cronLogs.Create(ctx, entry); logErr != nil {
		s.log.Warn("cron log write failed",
			zap.String("job", name),
			zap.Error(logErr))
	}

	if err != nil {
		return affected, err
	}

	s.log.Info("sweep finished",
		zap.String("job", name),
		zap.Int64("affected", affected),
		zap.String("triggered_by", triggeredBy))
	return affected, nil
}
