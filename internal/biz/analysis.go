package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// AnalysisRecord is a cached scoring result together with the product
// identity it was computed for.
type AnalysisRecord struct {
	ID          string          `json:"id"`
	Barcode     string          `json:"barcode,omitempty"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Breakdown   *ScoreBreakdown `json:"breakdown"`
	CachedAt    time.Time       `json:"cached_at"`
}

// AnalysisRepo indexes analysis records by id, barcode and product
// identity hash. Lookups return (nil, nil) on a miss.
type AnalysisRepo interface {
	Cache(ctx context.Context, record *AnalysisRecord, ingredients []string) error
	GetByID(ctx context.Context, id string) (*AnalysisRecord, error)
	GetByBarcode(ctx context.Context, barcode string) (*AnalysisRecord, error)
	// GetByBarcodes resolves several barcodes at once; the result maps
	// only the barcodes that were found.
	GetByBarcodes(ctx context.Context, barcodes []string) (map[string]*AnalysisRecord, error)
	GetByProduct(ctx context.Context, name, category string, ingredients []string) (*AnalysisRecord, error)
	Invalidate(ctx context.Context, id string) error
	// PurgeAll drops every cached analysis and the barcode guard,
	// returning how many keys were removed.
	PurgeAll(ctx context.Context) (int64, error)
}

// AnalysisUsecase exposes direct access to the analysis index, mainly
// for lookup endpoints and admin invalidation.
type AnalysisUsecase struct {
	repo AnalysisRepo
	log  *log.Helper
}

// NewAnalysisUsecase creates an AnalysisUsecase.
func NewAnalysisUsecase(repo AnalysisRepo, logger log.Logger) *AnalysisUsecase {
	return &AnalysisUsecase{repo: repo, log: log.NewHelper(logger)}
}

// Cache stores an externally computed analysis record, indexing it by
// id, barcode and product identity.
func (uc *AnalysisUsecase) Cache(ctx context.Context, record *AnalysisRecord, ingredients []string) error {
	return uc.repo.Cache(ctx, record, ingredients)
}

// GetByID returns the cached analysis for an id, or nil when absent.
func (uc *AnalysisUsecase) GetByID(ctx context.Context, id string) (*AnalysisRecord, error) {
	return uc.repo.GetByID(ctx, id)
}

// GetByBarcode returns the cached analysis for a barcode, or nil when absent.
func (uc *AnalysisUsecase) GetByBarcode(ctx context.Context, barcode string) (*AnalysisRecord, error) {
	return uc.repo.GetByBarcode(ctx, barcode)
}

// GetByProduct returns the cached analysis matching a product identity
// (name, category, ingredients regardless of order), or nil when absent.
func (uc *AnalysisUsecase) GetByProduct(ctx context.Context, name, category string, ingredients []string) (*AnalysisRecord, error) {
	return uc.repo.GetByProduct(ctx, name, category, ingredients)
}

// GetByBarcodes returns the cached analyses for a batch of barcodes,
// keyed by barcode. Barcodes with no cached analysis are absent.
func (uc *AnalysisUsecase) GetByBarcodes(ctx context.Context, barcodes []string) (map[string]*AnalysisRecord, error) {
	return uc.repo.GetByBarcodes(ctx, barcodes)
}

// Invalidate evicts an analysis after a product reformulation or a
// reference table update.
func (uc *AnalysisUsecase) Invalidate(ctx context.Context, id string) error {
	uc.log.Infof("Invalidate: evicting analysis id=%s", id)
	return uc.repo.Invalidate(ctx, id)
}

// PurgeAll drops the whole analysis cache. Needed when the rule tables
// change: every cached score may be stale at once.
func (uc *AnalysisUsecase) PurgeAll(ctx context.Context) (int64, error) {
	n, err := uc.repo.PurgeAll(ctx)
	if err != nil {
		return n, err
	}
	uc.log.Infof("PurgeAll: dropped %d analysis keys", n)
	return n, nil
}
