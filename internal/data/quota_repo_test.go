package data

import (
	"context"
	"testing"
	"time"
)

func TestQuotaRepo_CountsPerUser(t *testing.T) {
	mem := newMemCache()
	repo := NewQuotaRepo(mem, testLogger())
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Increment(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Increment = %d, want %d", got, want)
		}
	}

	// Another user has an independent counter.
	if got, err := repo.Increment(ctx, "u2"); err != nil || got != 1 {
		t.Errorf("Increment(u2) = %d, %v, want 1", got, err)
	}

	if got, err := repo.Decrement(ctx, "u1"); err != nil || got != 2 {
		t.Errorf("Decrement = %d, %v, want 2", got, err)
	}
}

func TestQuotaRepo_CounterExpires(t *testing.T) {
	mem := newMemCache()
	repo := NewQuotaRepo(mem, testLogger())
	ctx := context.Background()

	if _, err := repo.Increment(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	key := (&quotaRepo{}).key("u1")
	ttl, err := mem.TTL(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if ttl <= 0 {
		t.Errorf("counter TTL = %v, want a positive lifetime", ttl)
	}
	if ttl > 48*time.Hour {
		t.Errorf("counter TTL = %v, want at most 48h", ttl)
	}
}
