package data

import (
	"context"
	"fmt"
	"time"

	"ecoscore/internal/biz"
	pkgredis "ecoscore/internal/pkg/redis"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	quotaKey = "quota:scan:%s:%s"

	// quotaKeyLifetime outlives the UTC day the counter belongs to, so a
	// counter created at 23:59 still expires cleanly.
	quotaKeyLifetime = 48 * 3600
)

type quotaRepo struct {
	cache pkgredis.Cache
	log   *log.Helper
}

// NewQuotaRepo creates the Redis-backed daily scan counter. Counters are
// keyed by user and UTC day and expire on their own.
func NewQuotaRepo(cache pkgredis.Cache, logger log.Logger) biz.QuotaRepo {
	return &quotaRepo{cache: cache, log: log.NewHelper(logger)}
}

func (r *quotaRepo) Increment(ctx context.Context, userID string) (int64, error) {
	key := r.key(userID)
	n, err := r.cache.IncrBy(ctx, key, 1)
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if _, err := r.cache.Expire(ctx, key, quotaKeyLifetime); err != nil {
			r.log.Warnf("Increment: setting expiry on %s: %v", key, err)
		}
	}
	return n, nil
}

func (r *quotaRepo) Decrement(ctx context.Context, userID string) (int64, error) {
	return r.cache.DecrBy(ctx, r.key(userID), 1)
}

func (r *quotaRepo) key(userID string) string {
	return fmt.Sprintf(quotaKey, userID, time.Now().UTC().Format("20060102"))
}
