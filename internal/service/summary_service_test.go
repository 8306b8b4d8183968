package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
)

type mockSummaryRepo struct {
	registered int
	capacity   int
	occupied   int
	fees       int64
	since      time.Time
	err        error
}

func (m *mockSummaryRepo) CountRegistered(ctx context.Context) (int, error) {
	return m.registered, m.err
}

func (m *mockSummaryRepo) SumOpenCapacity(ctx context.Context) (int, error) {
	return m.capacity, nil
}

func (m *mockSummaryRepo) CountOccupiedOpen(ctx context.Context) (int, error) {
	return m.occupied, nil
}

func (m *mockSummaryRepo) SumFeesSince(ctx context.Context, since time.Time) (int64, error) {
	m.since = since
	return m.fees, nil
}

func TestSummaryDefaultsToCurrentMonth(t *testing.T) {
	repo := &mockSummaryRepo{registered: 7, capacity: 75, occupied: 6, fees: 2400000}
	svc := NewSummaryService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC) }

	summary, err := svc.Summary(context.Background(), nil)
	require.NoError(t, err)

	want := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, summary.PeriodStart)
	assert.Equal(t, want, repo.since)
	assert.Equal(t, 7, summary.ActiveRegistrationCount)
	assert.Equal(t, 75, summary.TotalOpenCapacity)
	assert.Equal(t, 6, summary.OccupiedOpenCapacity)
	assert.Equal(t, 69, summary.AvailableOpenCapacity)
	assert.Equal(t, int64(2400000), summary.PeriodFeeProjection)
	assert.False(t, summary.CapacityAnomaly)
}

func TestSummaryExplicitPeriod(t *testing.T) {
	repo := &mockSummaryRepo{}
	svc := NewSummaryService(repo, nil, nil)

	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	summary, err := svc.Summary(context.Background(), &start)
	require.NoError(t, err)
	assert.Equal(t, start, summary.PeriodStart)
	assert.Equal(t, start, repo.since)
}

func TestSummaryFlagsNegativeCapacity(t *testing.T) {
	repo := &mockSummaryRepo{registered: 12, capacity: 10, occupied: 12}
	metrics := NewMetricsService()
	svc := NewSummaryService(repo, metrics, nil)

	summary, err := svc.Summary(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, -2, summary.AvailableOpenCapacity)
	assert.True(t, summary.CapacityAnomaly)
	assert.Contains(t, scrapeMetrics(t, metrics), "sikampus_capacity_anomalies_total 1")
}

func TestSummaryStorageError(t *testing.T) {
	svc := NewSummaryService(&mockSummaryRepo{err: errors.New("timeout")}, nil, nil)
	_, err := svc.Summary(context.Background(), nil)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestDefaultPeriodStartNormalisesToUTC(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	local := time.Date(2026, 11, 1, 3, 0, 0, 0, jakarta)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), DefaultPeriodStart(local))
}
