package data

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

func testLogger() log.Logger {
	return log.NewStdLogger(io.Discard)
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheStore_RoundTrip(t *testing.T) {
	s := NewCacheStore(newMemCache(), testLogger())
	ctx := context.Background()

	s.Set(ctx, "k", payload{Name: "savon", Count: 3}, time.Minute)

	var got payload
	if !s.Get(ctx, "k", &got) {
		t.Fatal("expected a hit after Set")
	}
	if got.Name != "savon" || got.Count != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestCacheStore_MissReturnsFalse(t *testing.T) {
	s := NewCacheStore(newMemCache(), testLogger())

	var got payload
	if s.Get(context.Background(), "absent", &got) {
		t.Error("expected a miss for an absent key")
	}
}

func TestCacheStore_CorruptEntryEvicted(t *testing.T) {
	mem := newMemCache()
	s := NewCacheStore(mem, testLogger())
	ctx := context.Background()

	if err := mem.SetString(ctx, "k", "{not json", 0); err != nil {
		t.Fatal(err)
	}

	var got payload
	if s.Get(ctx, "k", &got) {
		t.Error("corrupt entry must read as a miss")
	}
	if ok, _ := mem.Exists(ctx, "k"); ok {
		t.Error("corrupt entry must be evicted")
	}
}

func TestCacheStore_FailSoftReads(t *testing.T) {
	s := NewCacheStore(failCache{}, testLogger())
	ctx := context.Background()

	var got payload
	if s.Get(ctx, "k", &got) {
		t.Error("backend failure must read as a miss")
	}
	if s.Exists(ctx, "k") {
		t.Error("backend failure must read as absent")
	}
	// Writes must not panic or propagate.
	s.Set(ctx, "k", payload{}, time.Minute)
	s.Refresh(ctx, "k", time.Minute)
}

func TestCacheStore_GetOrSetLoadsOnce(t *testing.T) {
	s := NewCacheStore(newMemCache(), testLogger())
	ctx := context.Background()

	var loads int64
	load := func(context.Context) (any, error) {
		atomic.AddInt64(&loads, 1)
		time.Sleep(10 * time.Millisecond)
		return payload{Name: "riz", Count: 1}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var got payload
			if err := s.GetOrSet(ctx, "k", &got, time.Minute, load); err != nil {
				t.Errorf("GetOrSet: %v", err)
				return
			}
			if got.Name != "riz" {
				t.Errorf("got %+v", got)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt64(&loads); n != 1 {
		t.Errorf("loader ran %d times, want 1", n)
	}

	// A later call hits the cache, not the loader.
	var got payload
	if err := s.GetOrSet(ctx, "k", &got, time.Minute, load); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt64(&loads); n != 1 {
		t.Errorf("loader ran %d times after cached call, want 1", n)
	}
}

func TestCacheStore_GetOrSetPropagatesLoadError(t *testing.T) {
	s := NewCacheStore(newMemCache(), testLogger())

	var got payload
	err := s.GetOrSet(context.Background(), "k", &got, time.Minute, func(context.Context) (any, error) {
		return nil, errBackendDown
	})
	if err == nil {
		t.Fatal("expected the loader error to propagate")
	}
}
