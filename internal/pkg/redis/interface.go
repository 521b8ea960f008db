package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the low-level key/value contract the scoring core depends on.
// Errors are returned raw here; fail-soft semantics live one layer up in the
// cache store so that every caller degrades the same way.
type Cache interface {
	SetString(ctx context.Context, key, value string, exp time.Duration) error
	GetString(ctx context.Context, key string) (string, error)

	SetBytes(ctx context.Context, key string, value []byte, exp time.Duration) error
	GetBytes(ctx context.Context, key string) ([]byte, error)

	SetInt64(ctx context.Context, key string, value int64, exp time.Duration) error
	GetInt64(ctx context.Context, key string) (int64, error)

	// IncrBy and DecrBy are atomic at the store level.
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	DecrBy(ctx context.Context, key string, delta int64) (int64, error)

	// MGet returns a slice aligned with keys; a nil entry is a miss.
	MGet(ctx context.Context, keys ...string) ([]*string, error)
	// MSet applies all pairs as a single atomic batch. No per-key expiry.
	MSet(ctx context.Context, pairs map[string]string) error

	Exists(ctx context.Context, key string) (bool, error)

	// TTL returns the remaining lifetime, or a negative duration when the
	// key has no expiry or does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)

	Expire(ctx context.Context, key string, seconds int) (bool, error)

	Del(ctx context.Context, keys ...string) (int64, error)

	// DelPattern removes every key matching pattern and reports how many
	// were deleted.
	DelPattern(ctx context.Context, pattern string) (int64, error)

	ScriptRun(ctx context.Context, script *redis.Script, keys []string,
		args ...any) (any, error)
}
