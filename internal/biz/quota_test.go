package biz

import (
	"context"
	"errors"
	"testing"

	"ecoscore/internal/conf"
)

type memQuotaRepo struct {
	counts map[string]int64
}

func newMemQuotaRepo() *memQuotaRepo {
	return &memQuotaRepo{counts: make(map[string]int64)}
}

func (m *memQuotaRepo) Increment(_ context.Context, userID string) (int64, error) {
	m.counts[userID]++
	return m.counts[userID], nil
}

func (m *memQuotaRepo) Decrement(_ context.Context, userID string) (int64, error) {
	m.counts[userID]--
	return m.counts[userID], nil
}

func TestQuotaUsecase_ConsumeWithinLimit(t *testing.T) {
	repo := newMemQuotaRepo()
	uc := NewQuotaUsecase(repo, &conf.Quota{DailyScans: 3}, testLogger())
	ctx := context.Background()

	for want := int64(2); want >= 0; want-- {
		remaining, err := uc.Consume(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if remaining != want {
			t.Errorf("remaining = %d, want %d", remaining, want)
		}
	}
}

func TestQuotaUsecase_ExceedingRollsBack(t *testing.T) {
	repo := newMemQuotaRepo()
	uc := NewQuotaUsecase(repo, &conf.Quota{DailyScans: 1}, testLogger())
	ctx := context.Background()

	if _, err := uc.Consume(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Consume(ctx, "u1"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	// The rejected attempt must not burn quota.
	if repo.counts["u1"] != 1 {
		t.Errorf("counter = %d after rejection, want 1", repo.counts["u1"])
	}
}

func TestQuotaUsecase_ZeroLimitDisablesEnforcement(t *testing.T) {
	repo := newMemQuotaRepo()
	uc := NewQuotaUsecase(repo, &conf.Quota{DailyScans: 0}, testLogger())

	remaining, err := uc.Consume(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if remaining != -1 {
		t.Errorf("remaining = %d, want -1 for unlimited", remaining)
	}
	if repo.counts["u1"] != 0 {
		t.Error("unlimited mode must not touch the counter")
	}
}

func TestQuotaUsecase_Refund(t *testing.T) {
	repo := newMemQuotaRepo()
	uc := NewQuotaUsecase(repo, &conf.Quota{DailyScans: 5}, testLogger())
	ctx := context.Background()

	if _, err := uc.Consume(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if err := uc.Refund(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if repo.counts["u1"] != 0 {
		t.Errorf("counter = %d after refund, want 0", repo.counts["u1"])
	}
}
