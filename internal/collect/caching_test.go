package collect

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/vidgap/internal/logger"
	"github.com/cognicore/vidgap/pkg/vidgap/cache"
	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

// countingCollector records how many live calls each method served.
type countingCollector struct {
	autocomplete int
	expand       int
	trend        int
	videos       int
	recent       int
	comments     int

	err error
}

func (c *countingCollector) FetchAutocomplete(ctx context.Context, keyword string) ([]signal.Suggestion, error) {
	c.autocomplete++
	if c.err != nil {
		return nil, c.err
	}
	return []signal.Suggestion{{Keyword: keyword + " variant", Position: 1}}, nil
}

func (c *countingCollector) ExpandAutocomplete(ctx context.Context, keyword string) ([]signal.Suggestion, error) {
	c.expand++
	return []signal.Suggestion{{Keyword: keyword + " expanded", Position: 1}}, nil
}

func (c *countingCollector) FetchTrend(ctx context.Context, keyword string, window time.Duration) ([]signal.TrendPoint, error) {
	c.trend++
	return []signal.TrendPoint{{Time: time.Unix(1756000000, 0).UTC(), Interest: 40}}, nil
}

func (c *countingCollector) FetchTopVideos(ctx context.Context, keyword string, limit int) ([]signal.Video, error) {
	c.videos++
	return []signal.Video{{ID: "v1", Rank: 1, Views: 100}}, nil
}

func (c *countingCollector) FetchRecentVideoCount(ctx context.Context, keyword string, days int) (int, error) {
	c.recent++
	return 42, nil
}

func (c *countingCollector) FetchComments(ctx context.Context, videoID string, limit int) ([]string, error) {
	c.comments++
	return []string{"nice"}, nil
}

func newCachingFixture(t *testing.T) (*CachingCollector, *countingCollector) {
	t.Helper()
	store, err := cache.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	inner := &countingCollector{}
	return WithCache(inner, store, testConfig(), logger.NewQuiet()), inner
}

func TestCachingCollector_ReadThrough(t *testing.T) {
	ctx := context.Background()
	c, inner := newCachingFixture(t)

	first, err := c.FetchTopVideos(ctx, "niche hobby", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.FetchTopVideos(ctx, "niche hobby", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.videos != 1 {
		t.Errorf("live calls = %d, want 1", inner.videos)
	}
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Errorf("cached payload differs: %+v vs %+v", first, second)
	}
}

func TestCachingCollector_KeyIncludesParameters(t *testing.T) {
	ctx := context.Background()
	c, inner := newCachingFixture(t)

	c.FetchTopVideos(ctx, "niche hobby", 10)
	c.FetchTopVideos(ctx, "niche hobby", 25)
	c.FetchTopVideos(ctx, "other", 10)

	if inner.videos != 3 {
		t.Errorf("distinct parameters must not share entries, live calls = %d", inner.videos)
	}
}

func TestCachingCollector_AllMethodsCached(t *testing.T) {
	ctx := context.Background()
	c, inner := newCachingFixture(t)

	for i := 0; i < 2; i++ {
		c.FetchAutocomplete(ctx, "k")
		c.ExpandAutocomplete(ctx, "k")
		c.FetchTrend(ctx, "k", 0)
		c.FetchRecentVideoCount(ctx, "k", 30)
		c.FetchComments(ctx, "v1", 50)
	}

	if inner.autocomplete != 1 || inner.expand != 1 || inner.trend != 1 || inner.recent != 1 || inner.comments != 1 {
		t.Errorf("live calls = %+v, want 1 each", *inner)
	}
}

func TestCachingCollector_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	c, inner := newCachingFixture(t)

	inner.err = errors.New("provider down")
	if _, err := c.FetchAutocomplete(ctx, "k"); err == nil {
		t.Fatal("expected error to pass through")
	}

	inner.err = nil
	got, err := c.FetchAutocomplete(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("recovery fetch failed: %+v", got)
	}
	if inner.autocomplete != 2 {
		t.Errorf("live calls = %d, want 2 (failure not cached)", inner.autocomplete)
	}
}

func TestCachingCollector_ZeroTTLSkipsWrite(t *testing.T) {
	ctx := context.Background()

	store, err := cache.Open(ctx, filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := testConfig()
	cfg.Cache.SearchTTLHours = 0
	inner := &countingCollector{}
	c := WithCache(inner, store, cfg, logger.NewQuiet())

	c.FetchTopVideos(ctx, "k", 10)
	c.FetchTopVideos(ctx, "k", 10)
	if inner.videos != 2 {
		t.Errorf("zero TTL must disable caching, live calls = %d", inner.videos)
	}
}
