package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikampus-api/internal/models"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("redis unavailable")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis unavailable")
}

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("redis unavailable")
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &mockCacheRepo{}
	svc := NewCacheService(repo, nil, 0, nil, false)
	assert.False(t, svc.Enabled())

	require.NoError(t, svc.Set(context.Background(), "modules:all", []models.Module{{Code: "PRJ101"}}, 0))
	assert.Empty(t, repo.store)

	var dest []models.Module
	hit, err := svc.Get(context.Background(), "modules:all", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := &mockCacheRepo{}
	svc := NewCacheService(repo, nil, 0, nil, true)
	ctx := context.Background()

	var dest []models.Module
	hit, err := svc.Get(ctx, "modules:all", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "modules:all", []models.Module{{Code: "PRJ101"}}, 0))
	hit, err = svc.Get(ctx, "modules:all", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, dest, 1)
	assert.Equal(t, "PRJ101", dest[0].Code)

	require.NoError(t, svc.Invalidate(ctx, "modules:*"))
	assert.Empty(t, repo.store)
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	svc := NewCacheService(failingCacheRepo{}, nil, 0, nil, true)
	ctx := context.Background()

	var dest []models.Module
	hit, err := svc.Get(ctx, "modules:all", &dest)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, svc.Set(ctx, "modules:all", dest, 0))
	assert.Error(t, svc.Invalidate(ctx, "modules:*"))
}
