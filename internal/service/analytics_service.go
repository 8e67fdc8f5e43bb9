package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/residence-portal-api/internal/models"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

type requestLister interface {
	List(ctx context.Context, kind models.Kind, filter models.RequestFilter) ([]models.Request, error)
}

var maxBuckets = map[models.AnalyticsWindow]int{
	models.WindowDays:   366,
	models.WindowWeeks:  104,
	models.WindowMonths: 60,
}

// AnalyticsService builds the dashboard's request-volume series.
type AnalyticsService struct {
	requests requestLister
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	loc      *time.Location
	ttl      time.Duration
	now      func() time.Time
}

// NewAnalyticsService constructs an analytics service bucketing in loc.
func NewAnalyticsService(requests requestLister, cache *CacheService, metrics *MetricsService, loc *time.Location, ttl time.Duration, logger *zap.Logger) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{requests: requests, cache: cache, metrics: metrics, logger: logger, loc: loc, ttl: ttl, now: time.Now}
}

// Series returns the series for window, serving from cache when possible. The boolean reports a cache hit.
func (s *AnalyticsService) Series(ctx context.Context, window models.AnalyticsWindow, buckets int) (*models.AnalyticsSeries, bool, error) {
	buckets, err := normaliseBuckets(window, buckets)
	if err != nil {
		return nil, false, err
	}
	key := s.cacheKey(window, buckets)
	var cached models.AnalyticsSeries
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}
	series, err := s.compute(ctx, window, buckets)
	if err != nil {
		return nil, false, err
	}
	s.cache.Set(ctx, key, series, s.ttl)
	return series, false, nil
}

// Refresh drops every cached series and recomputes the requested one.
func (s *AnalyticsService) Refresh(ctx context.Context, window models.AnalyticsWindow, buckets int) (*models.AnalyticsSeries, error) {
	buckets, err := normaliseBuckets(window, buckets)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, "analytics:series:*")
	series, err := s.compute(ctx, window, buckets)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, s.cacheKey(window, buckets), series, s.ttl)
	return series, nil
}

func normaliseBuckets(window models.AnalyticsWindow, buckets int) (int, error) {
	if !window.Valid() {
		return 0, fieldError("window", "window must be one of days, weeks, months")
	}
	if buckets <= 0 {
		return window.DefaultBuckets(), nil
	}
	if max := maxBuckets[window]; buckets > max {
		return 0, fieldError("buckets", fmt.Sprintf("buckets must not exceed %d for %s", max, window))
	}
	return buckets, nil
}

func (s *AnalyticsService) cacheKey(window models.AnalyticsWindow, buckets int) string {
	return fmt.Sprintf("analytics:series:%s:%d:%s", window, buckets, s.loc.String())
}

func (s *AnalyticsService) compute(ctx context.Context, window models.AnalyticsWindow, buckets int) (*models.AnalyticsSeries, error) {
	now := s.now()
	first := shiftBucket(bucketStart(now, window, s.loc), window, -buckets)
	from, to := first.UTC(), now.UTC()

	start := time.Now()
	created := make(map[models.Kind][]time.Time, len(models.Kinds))
	for _, kind := range models.Kinds {
		items, err := s.requests.List(ctx, kind, models.RequestFilter{CreatedFrom: &from, CreatedTo: &to})
		if err != nil {
			return nil, appErrors.Unavailable(err, "failed to load requests for analytics")
		}
		stamps := make([]time.Time, 0, len(items))
		for _, item := range items {
			stamps = append(stamps, item.CreatedAt)
		}
		created[kind] = stamps
	}
	s.metrics.ObserveStoreQuery("analytics_series", time.Since(start))

	series := BuildSeries(window, buckets, now, s.loc, created)
	return &series, nil
}

// BuildSeries counts created timestamps per kind into a dense series of buckets+1 buckets
// ending with the bucket containing now. Timestamps outside the range are ignored.
func BuildSeries(window models.AnalyticsWindow, buckets int, now time.Time, loc *time.Location, created map[models.Kind][]time.Time) models.AnalyticsSeries {
	last := bucketStart(now, window, loc)
	first := shiftBucket(last, window, -buckets)

	out := make([]models.AnalyticsBucket, 0, buckets+1)
	index := make(map[string]int, buckets+1)
	for i := 0; i <= buckets; i++ {
		start := shiftBucket(first, window, i)
		label := bucketLabel(start, window)
		index[label] = i
		out = append(out, models.AnalyticsBucket{Date: label, Start: start})
	}

	for kind, stamps := range created {
		for _, ts := range stamps {
			if ts.Before(first) || ts.After(now) {
				continue
			}
			i, ok := index[bucketLabel(bucketStart(ts, window, loc), window)]
			if !ok {
				continue
			}
			switch kind {
			case models.KindGuest:
				out[i].Guests++
			case models.KindSleepover:
				out[i].Sleepover++
			case models.KindMaintenance:
				out[i].Maintenance++
			case models.KindComplaint:
				out[i].Complaints++
			}
		}
	}

	return models.AnalyticsSeries{
		Window:      window,
		Buckets:     out,
		Timezone:    loc.String(),
		GeneratedAt: now.UTC(),
	}
}

// bucketStart truncates t to the start of its day, ISO week (Monday) or month in loc.
func bucketStart(t time.Time, window models.AnalyticsWindow, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	switch window {
	case models.WindowWeeks:
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case models.WindowMonths:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}

func shiftBucket(start time.Time, window models.AnalyticsWindow, n int) time.Time {
	switch window {
	case models.WindowWeeks:
		return start.AddDate(0, 0, 7*n)
	case models.WindowMonths:
		return start.AddDate(0, n, 0)
	default:
		return start.AddDate(0, 0, n)
	}
}

func bucketLabel(start time.Time, window models.AnalyticsWindow) string {
	if window == models.WindowMonths {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}
