package biz

import (
	"context"
	"fmt"

	"ecoscore/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

// ErrQuotaExceeded is returned when a user has spent their daily scan
// allowance.
var ErrQuotaExceeded = fmt.Errorf("daily scan quota exceeded")

// QuotaRepo counts scans per user and day.
type QuotaRepo interface {
	Increment(ctx context.Context, userID string) (int64, error)
	Decrement(ctx context.Context, userID string) (int64, error)
}

// QuotaUsecase enforces the per-user daily scan limit.
type QuotaUsecase struct {
	repo  QuotaRepo
	limit int64
	log   *log.Helper
}

// NewQuotaUsecase creates a QuotaUsecase. A non-positive configured
// limit disables enforcement.
func NewQuotaUsecase(repo QuotaRepo, c *conf.Quota, logger log.Logger) *QuotaUsecase {
	var limit int64
	if c != nil {
		limit = c.DailyScans
	}
	return &QuotaUsecase{repo: repo, limit: limit, log: log.NewHelper(logger)}
}

// Consume spends one scan from the user's daily allowance and returns
// how many remain. It returns ErrQuotaExceeded when the allowance is
// already spent.
func (uc *QuotaUsecase) Consume(ctx context.Context, userID string) (remaining int64, err error) {
	if uc.limit <= 0 {
		return -1, nil
	}
	used, err := uc.repo.Increment(ctx, userID)
	if err != nil {
		return 0, err
	}
	if used > uc.limit {
		// Undo the optimistic increment so a retry tomorrow starts clean.
		if _, derr := uc.repo.Decrement(ctx, userID); derr != nil {
			uc.log.Warnf("Consume: rollback failed for user=%s: %v", userID, derr)
		}
		return 0, ErrQuotaExceeded
	}
	return uc.limit - used, nil
}

// Refund returns one scan to the user, e.g. after a failed analysis.
func (uc *QuotaUsecase) Refund(ctx context.Context, userID string) error {
	if uc.limit <= 0 {
		return nil
	}
	_, err := uc.repo.Decrement(ctx, userID)
	return err
}
