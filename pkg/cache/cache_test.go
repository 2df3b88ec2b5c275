package cache_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sandrolain/esopt/pkg/cache"
)

func TestCacheNew(t *testing.T) {
	c := cache.New(10)
	if got := c.Len(); got != 0 {
		t.Fatalf("expected empty cache, got %d", got)
	}
	if got := c.Capacity(); got != 10 {
		t.Fatalf("expected capacity 10, got %d", got)
	}
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := cache.New(0)
	if got := c.Capacity(); got != 256 {
		t.Fatalf("expected default capacity 256, got %d", got)
	}
}

func TestCacheSetGet(t *testing.T) {
	c := cache.New(4)
	want := cache.Result{Code: `"use strict";var a=3;`, Rounds: 2, Changes: 1}
	c.Set("k", want)

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != want {
		t.Fatalf("Get() = %+v, want %+v", got, want)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected cache miss")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Len != 1 {
		t.Fatalf("Stats() = %+v", stats)
	}
}

func TestCacheLRUEviction(t *testing.T) {
	c := cache.New(3)
	for _, k := range []string{"a", "b", "c"} {
		c.Set(k, cache.Result{Code: k})
	}
	// Touch "a" so "b" becomes the least recently used.
	c.Get("a")
	c.Set("d", cache.Result{Code: "d"})

	if got := c.Len(); got != 3 {
		t.Fatalf("expected 3 entries after eviction, got %d", got)
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal(`expected "b" to be evicted (LRU)`)
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("expected %q to survive", k)
		}
	}
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := cache.New(4)
	c.Set("k", cache.Result{Code: "x;"})
	c.Set("j", cache.Result{Code: "y;"})

	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after Invalidate")
	}

	c.Clear()
	if got := c.Len(); got != 0 {
		t.Fatalf("expected 0 after Clear, got %d", got)
	}
	if stats := c.Stats(); stats.Hits != 0 || stats.Misses != 0 {
		t.Fatalf("expected counters reset, got %+v", stats)
	}
}

func TestCacheGetOrOptimize(t *testing.T) {
	c := cache.New(4)
	calls := 0
	optimize := func() (cache.Result, error) {
		calls++
		return cache.Result{Code: "a;", Rounds: 1}, nil
	}

	for i := 0; i < 2; i++ {
		res, err := c.GetOrOptimize("k", optimize)
		if err != nil || res.Code != "a;" {
			t.Fatalf("GetOrOptimize() = %+v, %v", res, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 optimize call, got %d", calls)
	}

	boom := errors.New("boom")
	failing := func() (cache.Result, error) {
		calls++
		return cache.Result{}, boom
	}
	for i := 0; i < 2; i++ {
		if _, err := c.GetOrOptimize("bad", failing); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if calls != 3 {
		t.Fatalf("errors must not be cached: %d calls", calls)
	}
}

func TestCacheKey(t *testing.T) {
	if cache.Key("a;", "x") != cache.Key("a;", "x") {
		t.Error("Key must be deterministic")
	}
	if cache.Key("a;", "x") == cache.Key("a;", "y") {
		t.Error("fingerprint must change the key")
	}
	// The separator keeps fingerprint and source apart.
	if cache.Key("b", "a") == cache.Key("", "ab") {
		t.Error("keys of different inputs collide")
	}
	if got := len(cache.Key("", "")); got != 64 {
		t.Errorf("key length = %d, want 64", got)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := cache.New(8)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", (g+i)%16)
				_, _ = c.GetOrOptimize(key, func() (cache.Result, error) {
					return cache.Result{Code: key}, nil
				})
			}
		}(g)
	}
	wg.Wait()

	if got := c.Len(); got > 8 {
		t.Fatalf("Len() = %d exceeds capacity", got)
	}
}
