package data

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	pkgredis "ecoscore/internal/pkg/redis"

	"github.com/go-kratos/kratos/v2/log"
)

// CacheStore is the fail-soft JSON layer over the raw cache. Reads that
// fail at the backend behave like misses, writes are best effort; only
// operations whose outcome the caller must trust (counters, deletes)
// surface errors.
type CacheStore struct {
	cache pkgredis.Cache
	log   *log.Helper

	mu       sync.Mutex
	inflight map[string]*flight
}

type flight struct {
	wg      sync.WaitGroup
	payload []byte
	err     error
}

// NewCacheStore creates a CacheStore.
func NewCacheStore(cache pkgredis.Cache, logger log.Logger) *CacheStore {
	return &CacheStore{
		cache:    cache,
		log:      log.NewHelper(logger),
		inflight: make(map[string]*flight),
	}
}

// Get loads and decodes the value at key into dest. It returns false on
// a miss, on a backend failure, and on a corrupt entry; corrupt entries
// are evicted so they cannot poison later reads.
func (s *CacheStore) Get(ctx context.Context, key string, dest any) bool {
	raw, err := s.cache.GetBytes(ctx, key)
	if err != nil {
		if !errors.Is(err, pkgredis.Nil) {
			s.log.Warnf("cache get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.log.Warnf("cache entry %s is corrupt, evicting: %v", key, err)
		if _, derr := s.cache.Del(ctx, key); derr != nil {
			s.log.Warnf("cache evict %s: %v", key, derr)
		}
		return false
	}
	return true
}

// Set encodes value as JSON and stores it under key. Failures are
// logged and swallowed: a missed write only costs a recomputation.
func (s *CacheStore) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Errorf("cache set %s: encode: %v", key, err)
		return
	}
	if err := s.cache.SetBytes(ctx, key, raw, ttl); err != nil {
		s.log.Warnf("cache set %s: %v", key, err)
	}
}

// GetOrSet returns the value at key, computing and storing it via load
// on a miss. Concurrent callers of the same key share one load.
func (s *CacheStore) GetOrSet(ctx context.Context, key string, dest any, ttl time.Duration, load func(context.Context) (any, error)) error {
	if s.Get(ctx, key, dest) {
		return nil
	}

	s.mu.Lock()
	if f, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		f.wg.Wait()
		if f.err != nil {
			return f.err
		}
		return json.Unmarshal(f.payload, dest)
	}
	f := &flight{}
	f.wg.Add(1)
	s.inflight[key] = f
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
		f.wg.Done()
	}()

	value, err := load(ctx)
	if err != nil {
		f.err = err
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		f.err = err
		return err
	}
	f.payload = raw

	if err := s.cache.SetBytes(ctx, key, raw, ttl); err != nil {
		s.log.Warnf("cache set %s: %v", key, err)
	}
	return json.Unmarshal(raw, dest)
}

// Delete removes keys. Unlike reads this is not fail-soft: a failed
// invalidation leaves stale data the caller must know about.
func (s *CacheStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.cache.Del(ctx, keys...)
	return err
}

// Invalidate removes every key matching pattern.
func (s *CacheStore) Invalidate(ctx context.Context, pattern string) (int64, error) {
	return s.cache.DelPattern(ctx, pattern)
}

// Exists reports whether key is present. Backend failures read as absent.
func (s *CacheStore) Exists(ctx context.Context, key string) bool {
	ok, err := s.cache.Exists(ctx, key)
	if err != nil {
		s.log.Warnf("cache exists %s: %v", key, err)
		return false
	}
	return ok
}

// TTL returns the remaining lifetime of key.
func (s *CacheStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return s.cache.TTL(ctx, key)
}

// Refresh pushes the expiry of key forward, implementing sliding TTLs.
func (s *CacheStore) Refresh(ctx context.Context, key string, ttl time.Duration) {
	if _, err := s.cache.Expire(ctx, key, int(ttl/time.Second)); err != nil {
		s.log.Warnf("cache refresh %s: %v", key, err)
	}
}

// Increment atomically adds one to the counter at key.
func (s *CacheStore) Increment(ctx context.Context, key string) (int64, error) {
	return s.cache.IncrBy(ctx, key, 1)
}

// Decrement atomically subtracts one from the counter at key.
func (s *CacheStore) Decrement(ctx context.Context, key string) (int64, error) {
	return s.cache.DecrBy(ctx, key, 1)
}

// MGet fetches several string keys in one round trip.
func (s *CacheStore) MGet(ctx context.Context, keys ...string) ([]*string, error) {
	return s.cache.MGet(ctx, keys...)
}

// MSet stores several string pairs in one round trip.
func (s *CacheStore) MSet(ctx context.Context, pairs map[string]string) error {
	return s.cache.MSet(ctx, pairs)
}

// SetString stores a plain string value.
func (s *CacheStore) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.cache.SetString(ctx, key, value, ttl)
}

// GetString loads a plain string value; a miss returns ("", false).
func (s *CacheStore) GetString(ctx context.Context, key string) (string, bool) {
	v, err := s.cache.GetString(ctx, key)
	if err != nil {
		if !errors.Is(err, pkgredis.Nil) {
			s.log.Warnf("cache get %s: %v", key, err)
		}
		return "", false
	}
	return v, true
}
