package collect

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/vidgap/pkg/vidgap"
	"github.com/cognicore/vidgap/pkg/vidgap/cache"
	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

// CachingCollector is a read-through cache over another collector. The
// engine stays agnostic to whether its bundle came from cache or a live
// call; cache failures degrade to live fetches.
type CachingCollector struct {
	inner vidgap.Collector
	store *cache.Cache
	cfg   config.Config
	log   logrus.FieldLogger
}

var _ vidgap.Collector = (*CachingCollector)(nil)

// WithCache wraps a collector with the TTL cache.
func WithCache(inner vidgap.Collector, store *cache.Cache, cfg config.Config, log logrus.FieldLogger) *CachingCollector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachingCollector{inner: inner, store: store, cfg: cfg, log: log}
}

func (c *CachingCollector) FetchAutocomplete(ctx context.Context, keyword string) ([]signal.Suggestion, error) {
	key := fmt.Sprintf("%s_%s_%s", keyword, c.cfg.Collect.Language, c.cfg.Collect.Region)
	var cached []signal.Suggestion
	if c.lookup(ctx, cache.NSAutocomplete, key, &cached) {
		return cached, nil
	}

	fresh, err := c.inner.FetchAutocomplete(ctx, keyword)
	if err != nil {
		return nil, err
	}
	c.save(ctx, cache.NSAutocomplete, key, fresh, c.cfg.Cache.AutocompleteTTLHours)
	return fresh, nil
}

func (c *CachingCollector) ExpandAutocomplete(ctx context.Context, keyword string) ([]signal.Suggestion, error) {
	key := fmt.Sprintf("expand_%s_%s_%s", keyword, c.cfg.Collect.Language, c.cfg.Collect.Region)
	var cached []signal.Suggestion
	if c.lookup(ctx, cache.NSAutocomplete, key, &cached) {
		return cached, nil
	}

	fresh, err := c.inner.ExpandAutocomplete(ctx, keyword)
	if err != nil {
		return nil, err
	}
	c.save(ctx, cache.NSAutocomplete, key, fresh, c.cfg.Cache.AutocompleteTTLHours)
	return fresh, nil
}

func (c *CachingCollector) FetchTrend(ctx context.Context, keyword string, window time.Duration) ([]signal.TrendPoint, error) {
	key := fmt.Sprintf("%s_%s", keyword, window)
	var cached []signal.TrendPoint
	if c.lookup(ctx, cache.NSTrends, key, &cached) {
		return cached, nil
	}

	fresh, err := c.inner.FetchTrend(ctx, keyword, window)
	if err != nil {
		return nil, err
	}
	c.save(ctx, cache.NSTrends, key, fresh, c.cfg.Cache.TrendsTTLHours)
	return fresh, nil
}

func (c *CachingCollector) FetchTopVideos(ctx context.Context, keyword string, limit int) ([]signal.Video, error) {
	key := fmt.Sprintf("%s_%d", keyword, limit)
	var cached []signal.Video
	if c.lookup(ctx, cache.NSSearch, key, &cached) {
		return cached, nil
	}

	fresh, err := c.inner.FetchTopVideos(ctx, keyword, limit)
	if err != nil {
		return nil, err
	}
	c.save(ctx, cache.NSSearch, key, fresh, c.cfg.Cache.SearchTTLHours)
	return fresh, nil
}

func (c *CachingCollector) FetchRecentVideoCount(ctx context.Context, keyword string, days int) (int, error) {
	key := fmt.Sprintf("recent_%s_%d", keyword, days)
	var cached int
	if c.lookup(ctx, cache.NSSearch, key, &cached) {
		return cached, nil
	}

	fresh, err := c.inner.FetchRecentVideoCount(ctx, keyword, days)
	if err != nil {
		return 0, err
	}
	c.save(ctx, cache.NSSearch, key, fresh, c.cfg.Cache.SearchTTLHours)
	return fresh, nil
}

func (c *CachingCollector) FetchComments(ctx context.Context, videoID string, limit int) ([]string, error) {
	key := fmt.Sprintf("comments_%s_%d", videoID, limit)
	var cached []string
	if c.lookup(ctx, cache.NSVideo, key, &cached) {
		return cached, nil
	}

	fresh, err := c.inner.FetchComments(ctx, videoID, limit)
	if err != nil {
		return nil, err
	}
	c.save(ctx, cache.NSVideo, key, fresh, c.cfg.Cache.VideoTTLHours)
	return fresh, nil
}

func (c *CachingCollector) lookup(ctx context.Context, ns, key string, v any) bool {
	hit, err := c.store.Get(ctx, ns, key, v)
	if err != nil {
		c.log.Warnf("cache read %s/%s: %v", ns, key, err)
		return false
	}
	return hit
}

func (c *CachingCollector) save(ctx context.Context, ns, key string, v any, ttlHours int) {
	if ttlHours <= 0 {
		return
	}
	if err := c.store.Set(ctx, ns, key, v, time.Duration(ttlHours)*time.Hour); err != nil {
		c.log.Warnf("cache write %s/%s: %v", ns, key, err)
	}
}
