package data

import (
	"context"
	"errors"
	"path"
	"strconv"
	"sync"
	"time"

	pkgredis "ecoscore/internal/pkg/redis"

	redis "github.com/redis/go-redis/v9"
)

// memCache is an in-memory stand-in for the Redis cache used by the
// repository tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	bits    map[string]map[string]bool
}

type memEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func newMemCache() *memCache {
	return &memCache{
		entries: make(map[string]*memEntry),
		bits:    make(map[string]map[string]bool),
	}
}

func (m *memCache) get(key string) (*memEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e, true
}

func (m *memCache) set(key, value string, exp time.Duration) {
	e := &memEntry{value: value}
	if exp > 0 {
		e.expiresAt = time.Now().Add(exp)
	}
	m.entries[key] = e
}

func (m *memCache) SetString(ctx context.Context, key, value string, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key, value, exp)
	return nil
}

func (m *memCache) GetString(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.get(key)
	if !ok {
		return "", pkgredis.Nil
	}
	return e.value, nil
}

func (m *memCache) SetBytes(ctx context.Context, key string, value []byte, exp time.Duration) error {
	return m.SetString(ctx, key, string(value), exp)
}

func (m *memCache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	v, err := m.GetString(ctx, key)
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (m *memCache) SetInt64(ctx context.Context, key string, value int64, exp time.Duration) error {
	return m.SetString(ctx, key, strconv.FormatInt(value, 10), exp)
}

func (m *memCache) GetInt64(ctx context.Context, key string) (int64, error) {
	v, err := m.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func (m *memCache) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var current int64
	if e, ok := m.get(key); ok {
		n, err := strconv.ParseInt(e.value, 10, 64)
		if err != nil {
			return 0, err
		}
		current = n
	}
	current += delta
	if e, ok := m.get(key); ok {
		e.value = strconv.FormatInt(current, 10)
	} else {
		m.set(key, strconv.FormatInt(current, 10), 0)
	}
	return current, nil
}

func (m *memCache) DecrBy(ctx context.Context, key string, delta int64) (int64, error) {
	return m.IncrBy(ctx, key, -delta)
}

func (m *memCache) MGet(ctx context.Context, keys ...string) ([]*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*string, len(keys))
	for i, key := range keys {
		if e, ok := m.get(key); ok {
			v := e.value
			out[i] = &v
		}
	}
	return out, nil
}

func (m *memCache) MSet(ctx context.Context, pairs map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range pairs {
		m.set(k, v, 0)
	}
	return nil
}

func (m *memCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.get(key)
	return ok, nil
}

func (m *memCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.get(key)
	if !ok {
		return -2 * time.Second, nil
	}
	if e.expiresAt.IsZero() {
		return -1 * time.Second, nil
	}
	return time.Until(e.expiresAt), nil
}

func (m *memCache) Expire(ctx context.Context, key string, seconds int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.get(key)
	if !ok {
		return false, nil
	}
	e.expiresAt = time.Now().Add(time.Duration(seconds) * time.Second)
	return true, nil
}

func (m *memCache) Del(ctx context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := m.get(key); ok {
			delete(m.entries, key)
			n++
		}
		delete(m.bits, key)
	}
	return n, nil
}

func (m *memCache) DelPattern(ctx context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
			n++
		}
	}
	return n, nil
}

// ScriptRun loosely emulates the bitset scripts: a run whose offsets are
// all already set answers 1, any other run sets its offsets and answers
// 0. This keeps bloom-filter adds and membership checks working without
// a Lua interpreter; the only divergence is an occasional false
// positive, which the filter contract allows anyway.
func (m *memCache) ScriptRun(ctx context.Context, script *redis.Script, keys []string, args ...any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(keys) == 0 || len(args) == 0 {
		return nil, errors.New("memCache: bad script invocation")
	}
	offsets, ok := args[0].([]string)
	if !ok {
		return nil, errors.New("memCache: unexpected script args")
	}
	set := m.bits[keys[0]]
	if set == nil {
		set = make(map[string]bool)
		m.bits[keys[0]] = set
	}
	all := true
	for _, off := range offsets {
		if !set[off] {
			all = false
		}
	}
	if all {
		return int64(1), nil
	}
	for _, off := range offsets {
		set[off] = true
	}
	return int64(0), nil
}

// failCache fails every operation, for exercising fail-soft paths.
type failCache struct{}

var errBackendDown = errors.New("backend down")

func (failCache) SetString(context.Context, string, string, time.Duration) error {
	return errBackendDown
}
func (failCache) GetString(context.Context, string) (string, error) { return "", errBackendDown }
func (failCache) SetBytes(context.Context, string, []byte, time.Duration) error {
	return errBackendDown
}
func (failCache) GetBytes(context.Context, string) ([]byte, error) { return nil, errBackendDown }
func (failCache) SetInt64(context.Context, string, int64, time.Duration) error {
	return errBackendDown
}
func (failCache) GetInt64(context.Context, string) (int64, error)      { return 0, errBackendDown }
func (failCache) IncrBy(context.Context, string, int64) (int64, error) { return 0, errBackendDown }
func (failCache) DecrBy(context.Context, string, int64) (int64, error) { return 0, errBackendDown }
func (failCache) MGet(context.Context, ...string) ([]*string, error)   { return nil, errBackendDown }
func (failCache) MSet(context.Context, map[string]string) error        { return errBackendDown }
func (failCache) Exists(context.Context, string) (bool, error)         { return false, errBackendDown }
func (failCache) TTL(context.Context, string) (time.Duration, error)   { return 0, errBackendDown }
func (failCache) Expire(context.Context, string, int) (bool, error)    { return false, errBackendDown }
func (failCache) Del(context.Context, ...string) (int64, error)        { return 0, errBackendDown }
func (failCache) DelPattern(context.Context, string) (int64, error)    { return 0, errBackendDown }
func (failCache) ScriptRun(context.Context, *redis.Script, []string, ...any) (any, error) {
	return nil, errBackendDown
}
