package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCacheRepo struct{}

func (brokenCacheRepo) Get(context.Context, string, interface{}) error {
	return errors.New("redis unavailable")
}

func (brokenCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis unavailable")
}

func (brokenCacheRepo) Delete(context.Context, ...string) error {
	return errors.New("redis unavailable")
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	ctx := context.Background()
	repo := newMockCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), 0, nil, true)

	var dest map[string]int
	hit, err := svc.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", map[string]int{"a": 1}, 0))
	hit, err = svc.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, dest["a"])

	require.NoError(t, svc.Invalidate(ctx, "k"))
	hit, _ = svc.Get(ctx, "k", &dest)
	assert.False(t, hit)
}

func TestCacheServiceDisabled(t *testing.T) {
	ctx := context.Background()
	repo := newMockCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(ctx, "k", 1, 0))
	assert.Empty(t, repo.items)

	var nilSvc *CacheService
	hit, err := nilSvc.Get(ctx, "k", new(int))
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, nilSvc.Invalidate(ctx, "k"))
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewCacheService(brokenCacheRepo{}, nil, time.Minute, nil, true)

	hit, err := svc.Get(ctx, "k", new(int))
	assert.False(t, hit)
	assert.Error(t, err)
	assert.Error(t, svc.Set(ctx, "k", 1, 0))
	assert.Error(t, svc.Invalidate(ctx, "k"))
}

func TestClassDegreesKeyScopesVersionAndProcess(t *testing.T) {
	first := NewCacheService(newMockCacheRepo(), nil, time.Minute, nil, true)
	second := NewCacheService(newMockCacheRepo(), nil, time.Minute, nil, true)

	key := first.ClassDegreesKey(42, 7)
	assert.Equal(t, key, first.ClassDegreesKey(42, 7))
	assert.Contains(t, key, ":class:42:v7:")
	assert.NotEqual(t, key, first.ClassDegreesKey(42, 8))
	assert.NotEqual(t, key, first.ClassDegreesKey(43, 7))
	assert.NotEqual(t, key, second.ClassDegreesKey(42, 7))

	var unset *CacheService
	assert.Equal(t, "registry::class:42:v7:degrees", unset.ClassDegreesKey(42, 7))
}
