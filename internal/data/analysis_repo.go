package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ecoscore/internal/biz"
	"ecoscore/internal/conf"
	"ecoscore/internal/pkg/bloom"
	"ecoscore/internal/pkg/hash"
	pkgredis "ecoscore/internal/pkg/redis"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	analysisIDKey      = "analysis:id:%s"
	analysisBarcodeKey = "analysis:barcode:%s"
	analysisHashKey    = "analysis:hash:%s"

	// barcodeBloomKey guards the barcode index against lookups for
	// products that were never cached.
	barcodeBloomKey   = "analysis:barcode:bloom"
	barcodeBloomBits  = 1 << 20
	barcodeBloomHashK = 7

	defaultAnalysisTTL = 24 * time.Hour
)

type analysisRepo struct {
	store *CacheStore
	cache pkgredis.Cache
	bloom *bloom.Filter
	ttl   time.Duration
	log   *log.Helper
}

// NewAnalysisRepo creates the Redis-backed analysis index. Records are
// stored once under their id; barcode and product-hash entries are
// pointers to that id so one analysis never exists in three copies.
func NewAnalysisRepo(store *CacheStore, cache pkgredis.Cache, c *conf.Data, logger log.Logger) biz.AnalysisRepo {
	ttl := defaultAnalysisTTL
	if c != nil && c.Cache != nil && c.Cache.AnalysisTTLSeconds > 0 {
		ttl = time.Duration(c.Cache.AnalysisTTLSeconds) * time.Second
	}
	return &analysisRepo{
		store: store,
		cache: cache,
		bloom: bloom.New(cache, barcodeBloomKey, barcodeBloomBits, barcodeBloomHashK),
		ttl:   ttl,
		log:   log.NewHelper(logger),
	}
}

func (r *analysisRepo) Cache(ctx context.Context, record *biz.AnalysisRecord, ingredients []string) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("analysis record requires an id")
	}
	record.CachedAt = time.Now()

	r.store.Set(ctx, fmt.Sprintf(analysisIDKey, record.ID), record, r.ttl)

	// Pointer entries share the primary's fixed lifetime so they cannot
	// outlive the record by more than one TTL window.
	if record.Barcode != "" {
		if err := r.store.SetString(ctx, fmt.Sprintf(analysisBarcodeKey, record.Barcode), record.ID, r.ttl); err != nil {
			r.log.Warnf("Cache: barcode index write for %s: %v", record.Barcode, err)
		}
		if err := r.bloom.AddString(ctx, record.Barcode); err != nil {
			r.log.Warnf("Cache: bloom add for %s: %v", record.Barcode, err)
		}
	}
	h := hash.ProductHash(record.ProductName, record.Category, ingredients)
	if err := r.store.SetString(ctx, fmt.Sprintf(analysisHashKey, h), record.ID, r.ttl); err != nil {
		r.log.Warnf("Cache: hash index write: %v", err)
	}
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, id string) (*biz.AnalysisRecord, error) {
	var record biz.AnalysisRecord
	if !r.store.Get(ctx, fmt.Sprintf(analysisIDKey, id), &record) {
		return nil, nil
	}
	return &record, nil
}

func (r *analysisRepo) GetByBarcode(ctx context.Context, barcode string) (*biz.AnalysisRecord, error) {
	if barcode == "" {
		return nil, nil
	}
	// A negative bloom answer is authoritative; a bloom failure falls
	// through to the index.
	if may, err := r.bloom.ExistsString(ctx, barcode); err == nil && !may {
		return nil, nil
	} else if err != nil {
		r.log.Warnf("GetByBarcode: bloom check for %s: %v", barcode, err)
	}
	return r.resolve(ctx, fmt.Sprintf(analysisBarcodeKey, barcode))
}

// GetByBarcodes resolves a batch of barcodes in two round trips: one
// MGET over the pointer entries, one over the records they name.
func (r *analysisRepo) GetByBarcodes(ctx context.Context, barcodes []string) (map[string]*biz.AnalysisRecord, error) {
	if len(barcodes) == 0 {
		return nil, nil
	}
	pointerKeys := make([]string, len(barcodes))
	for i, bc := range barcodes {
		pointerKeys[i] = fmt.Sprintf(analysisBarcodeKey, bc)
	}
	ids, err := r.cache.MGet(ctx, pointerKeys...)
	if err != nil {
		return nil, err
	}

	recordKeys := make([]string, 0, len(barcodes))
	owners := make([]string, 0, len(barcodes))
	for i, id := range ids {
		if id == nil {
			continue
		}
		recordKeys = append(recordKeys, fmt.Sprintf(analysisIDKey, *id))
		owners = append(owners, barcodes[i])
	}
	if len(recordKeys) == 0 {
		return map[string]*biz.AnalysisRecord{}, nil
	}

	raws, err := r.cache.MGet(ctx, recordKeys...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*biz.AnalysisRecord, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		var record biz.AnalysisRecord
		if err := json.Unmarshal([]byte(*raw), &record); err != nil {
			r.log.Warnf("GetByBarcodes: corrupt record at %s: %v", recordKeys[i], err)
			continue
		}
		out[owners[i]] = &record
	}
	return out, nil
}

func (r *analysisRepo) GetByProduct(ctx context.Context, name, category string, ingredients []string) (*biz.AnalysisRecord, error) {
	h := hash.ProductHash(name, category, ingredients)
	return r.resolve(ctx, fmt.Sprintf(analysisHashKey, h))
}

// resolve follows a pointer entry to its record. Dangling pointers left
// behind by an eviction or invalidation are removed on sight.
func (r *analysisRepo) resolve(ctx context.Context, pointerKey string) (*biz.AnalysisRecord, error) {
	id, ok := r.store.GetString(ctx, pointerKey)
	if !ok {
		return nil, nil
	}
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		r.log.Debugf("resolve: dropping dangling pointer %s -> %s", pointerKey, id)
		if err := r.store.Delete(ctx, pointerKey); err != nil {
			r.log.Warnf("resolve: dropping %s: %v", pointerKey, err)
		}
		return nil, nil
	}
	return record, nil
}

func (r *analysisRepo) PurgeAll(ctx context.Context) (int64, error) {
	n, err := r.store.Invalidate(ctx, "analysis:*")
	if err != nil {
		return n, err
	}
	if err := r.bloom.Reset(ctx); err != nil {
		r.log.Warnf("PurgeAll: resetting barcode guard: %v", err)
	}
	return n, nil
}

// Invalidate removes the record and its barcode pointer. The barcode is
// read from the record itself; if the record already expired, only the
// primary key is deleted and the pointer self-heals on the next lookup.
func (r *analysisRepo) Invalidate(ctx context.Context, id string) error {
	keys := []string{fmt.Sprintf(analysisIDKey, id)}
	if record, err := r.GetByID(ctx, id); err == nil && record != nil && record.Barcode != "" {
		keys = append(keys, fmt.Sprintf(analysisBarcodeKey, record.Barcode))
	}
	// The product-hash pointer is left to its TTL: it cannot be derived
	// from id alone, and resolve drops it on the next lookup anyway.
	return r.store.Delete(ctx, keys...)
}
