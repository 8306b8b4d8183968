package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sikampus-api/internal/models"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
)

type summaryRepository interface {
	CountRegistered(ctx context.Context) (int, error)
	SumOpenCapacity(ctx context.Context) (int, error)
	CountOccupiedOpen(ctx context.Context) (int, error)
	SumFeesSince(ctx context.Context, since time.Time) (int64, error)
}

// SummaryService derives staff metrics from current state on every call.
type SummaryService struct {
	repo    summaryRepository
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewSummaryService constructs SummaryService.
func NewSummaryService(repo summaryRepository, metrics *MetricsService, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{repo: repo, metrics: metrics, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// DefaultPeriodStart is midnight UTC on the first day of now's month.
func DefaultPeriodStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Summary aggregates registration and capacity figures. A nil periodStart
// selects the current month.
func (s *SummaryService) Summary(ctx context.Context, periodStart *time.Time) (*models.MetricsSummary, error) {
	start := DefaultPeriodStart(s.now())
	if periodStart != nil && !periodStart.IsZero() {
		start = periodStart.UTC()
	}

	active, err := s.repo.CountRegistered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active registrations")
	}
	capacity, err := s.repo.SumOpenCapacity(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum open capacity")
	}
	occupied, err := s.repo.CountOccupiedOpen(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count occupied capacity")
	}
	fees, err := s.repo.SumFeesSince(ctx, start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to project period fees")
	}

	summary := &models.MetricsSummary{
		ActiveRegistrationCount: active,
		TotalOpenCapacity:       capacity,
		OccupiedOpenCapacity:    occupied,
		AvailableOpenCapacity:   capacity - occupied,
		PeriodFeeProjection:     fees,
		PeriodStart:             start,
	}
	if summary.AvailableOpenCapacity < 0 {
		summary.CapacityAnomaly = true
		s.metrics.RecordCapacityAnomaly()
		s.logger.Warn("open capacity is negative",
			zap.Int("total_open_capacity", capacity),
			zap.Int("occupied_open_capacity", occupied),
		)
	}
	return summary, nil
}
