package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

type payload struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	in := payload{Keyword: "niche hobby", Count: 7}
	if err := c.Set(ctx, NSSearch, "k1", in, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out payload
	hit, err := c.Get(ctx, NSSearch, "k1", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !hit {
		t.Fatal("expected hit")
	}
	if out != in {
		t.Errorf("round trip lost data: %+v", out)
	}
}

func TestGetMiss(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	var out payload
	hit, err := c.Get(ctx, NSSearch, "absent", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hit {
		t.Error("expected miss")
	}
}

func TestNamespacesIsolate(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	if err := c.Set(ctx, NSSearch, "k", payload{Count: 1}, time.Hour); err != nil {
		t.Fatal(err)
	}

	var out payload
	hit, err := c.Get(ctx, NSTrends, "k", &out)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("key leaked across namespaces")
	}
}

func TestExpiredEntryMissesAndIsRemoved(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	if err := c.Set(ctx, NSVideo, "k", payload{Count: 1}, -time.Second); err != nil {
		t.Fatal(err)
	}

	var out payload
	hit, err := c.Get(ctx, NSVideo, "k", &out)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("expired entry served")
	}

	stats, err := c.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 0 {
		t.Errorf("expired row not lazily removed, total = %d", stats.Total)
	}
}

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	if err := c.Set(ctx, NSChannel, "k", payload{Count: 1}, time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, NSChannel, "k", payload{Count: 2}, time.Hour); err != nil {
		t.Fatal(err)
	}

	var out payload
	if _, err := c.Get(ctx, NSChannel, "k", &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 {
		t.Errorf("count = %d, want overwritten value 2", out.Count)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	if err := c.Set(ctx, NSSearch, "k", payload{}, time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, NSSearch, "k"); err != nil {
		t.Fatal(err)
	}

	var out payload
	if hit, _ := c.Get(ctx, NSSearch, "k", &out); hit {
		t.Error("entry survived delete")
	}
}

func TestClearNamespace(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	c.Set(ctx, NSSearch, "a", payload{}, time.Hour)
	c.Set(ctx, NSSearch, "b", payload{}, time.Hour)
	c.Set(ctx, NSTrends, "a", payload{}, time.Hour)

	if err := c.ClearNamespace(ctx, NSSearch); err != nil {
		t.Fatal(err)
	}

	stats, err := c.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ByNamespace[NSSearch] != 0 {
		t.Errorf("search namespace not cleared: %+v", stats.ByNamespace)
	}
	if stats.ByNamespace[NSTrends] != 1 {
		t.Errorf("trends namespace affected: %+v", stats.ByNamespace)
	}
}

func TestClearExpired(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	c.Set(ctx, NSSearch, "live", payload{}, time.Hour)
	c.Set(ctx, NSSearch, "dead1", payload{}, -time.Minute)
	c.Set(ctx, NSTrends, "dead2", payload{}, -time.Minute)

	n, err := c.ClearExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("removed %d rows, want 2", n)
	}

	var out payload
	if hit, _ := c.Get(ctx, NSSearch, "live", &out); !hit {
		t.Error("live entry removed")
	}
}

func TestClearAllAndStats(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	c.Set(ctx, NSSearch, "a", payload{}, time.Hour)
	c.Set(ctx, NSVideo, "b", payload{}, time.Hour)
	c.Set(ctx, NSVideo, "c", payload{}, -time.Minute)

	stats, err := c.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 || stats.Expired != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByNamespace[NSVideo] != 2 {
		t.Errorf("by namespace = %+v", stats.ByNamespace)
	}

	if err := c.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}
	stats, err = c.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 0 {
		t.Errorf("cache not empty after ClearAll: %+v", stats)
	}
}

func TestReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, NSSearch, "k", payload{Count: 9}, time.Hour); err != nil {
		t.Fatal(err)
	}
	c.Close()

	c2, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()

	var out payload
	hit, err := c2.Get(ctx, NSSearch, "k", &out)
	if err != nil {
		t.Fatal(err)
	}
	if !hit || out.Count != 9 {
		t.Errorf("entry lost across reopen: hit=%v out=%+v", hit, out)
	}
}
