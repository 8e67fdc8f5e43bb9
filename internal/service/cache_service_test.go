package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

type scriptedCache struct {
	getErr    error
	setErr    error
	deleteErr error
	sets      int
}

func (s *scriptedCache) Get(context.Context, string, interface{}) error { return s.getErr }

func (s *scriptedCache) Set(context.Context, string, interface{}, time.Duration) error {
	s.sets++
	return s.setErr
}

func (s *scriptedCache) DeleteByPattern(context.Context, string) error { return s.deleteErr }

func TestCacheServiceTreatsFaultsAsMiss(t *testing.T) {
	ctx := context.Background()
	var dest map[string]int

	miss := NewCacheService(&scriptedCache{getErr: appErrors.ErrCacheMiss}, nil, 0, nil, true)
	assert.False(t, miss.Get(ctx, "k", &dest))

	broken := &scriptedCache{getErr: errors.New("connection reset"), setErr: errors.New("connection reset"), deleteErr: errors.New("connection reset")}
	svc := NewCacheService(broken, NewMetricsService(), time.Minute, nil, true)
	assert.False(t, svc.Get(ctx, "k", &dest))
	svc.Set(ctx, "k", map[string]int{"a": 1}, 0)
	svc.Invalidate(ctx, "analytics:*")
	assert.Equal(t, 1, broken.sets)

	hit := NewCacheService(&scriptedCache{}, nil, 0, nil, true)
	assert.True(t, hit.Get(ctx, "k", &dest))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &scriptedCache{}
	svc := NewCacheService(repo, nil, 0, nil, false)

	assert.False(t, svc.Enabled())
	assert.False(t, svc.Get(context.Background(), "k", &struct{}{}))
	svc.Set(context.Background(), "k", 1, time.Second)
	assert.Zero(t, repo.sets)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}
