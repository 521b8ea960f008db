// Package bloom provides a Redis-bitset backed Bloom filter. The analysis
// index uses it as a penetration guard: barcodes that were never cached are
// answered without touching the record keyspace.
package bloom

import (
	"context"
	_ "embed"
	"errors"

	"ecoscore/internal/pkg/hash"
	"ecoscore/internal/pkg/redis"
)

var (
	// ErrTooLargeOffset indicates the offset is too large in bitset.
	ErrTooLargeOffset = errors.New("too large offset")

	//go:embed set_script.lua
	setLuaScript string
	setScript    = redis.NewScript(setLuaScript)

	//go:embed get_script.lua
	getLuaScript string
	getScript    = redis.NewScript(getLuaScript)
)

// Filter represents a Bloom filter data structure.
type Filter struct {
	bitSet         *redisBitSet
	bits           uint
	kHashFunctions uint
}

// New creates a Bloom filter over the given Redis key.
func New(store redis.Cache, key string, bits, kHashFunctions uint) *Filter {
	return &Filter{
		bits:           bits,
		bitSet:         newRedisBitSet(store, key, bits),
		kHashFunctions: kHashFunctions,
	}
}

// locations computes the bit positions for the given data.
func (f *Filter) locations(data []byte) []uint {
	locs := make([]uint, f.kHashFunctions)
	for i := uint(0); i < f.kHashFunctions; i++ {
		hashVal := hash.Hash(append(data, byte(i)))
		locs[i] = uint(hashVal % uint64(f.bits))
	}
	return locs
}

// Add records data in the filter.
func (f *Filter) Add(ctx context.Context, data []byte) error {
	return f.bitSet.set(ctx, f.locations(data))
}

// AddString records a string member in the filter.
func (f *Filter) AddString(ctx context.Context, s string) error {
	return f.Add(ctx, []byte(s))
}

// Exists reports whether data may have been added. False positives are
// possible, false negatives are not.
func (f *Filter) Exists(ctx context.Context, data []byte) (bool, error) {
	return f.bitSet.check(ctx, f.locations(data))
}

// ExistsString reports whether a string member may have been added.
func (f *Filter) ExistsString(ctx context.Context, s string) (bool, error) {
	return f.Exists(ctx, []byte(s))
}

// Reset drops the whole filter.
func (f *Filter) Reset(ctx context.Context) error {
	return f.bitSet.del(ctx)
}
