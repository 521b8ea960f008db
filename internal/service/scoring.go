package service

import (
	"context"

	"ecoscore/internal/biz"
	"ecoscore/internal/pkg/classify"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// ScoreRequest carries a product description submitted for scoring.
type ScoreRequest struct {
	SessionToken   string                  `json:"session_token"`
	ProductID      string                  `json:"product_id,omitempty"`
	Barcode        string                  `json:"barcode,omitempty"`
	Name           string                  `json:"name"`
	Category       string                  `json:"category"`
	Ingredients    []string                `json:"ingredients"`
	Certifications []string                `json:"certifications,omitempty"`
	Nutrition      classify.NutritionFacts `json:"nutrition"`
}

// ScoreReply is the scoring response.
type ScoreReply struct {
	Breakdown      *biz.ScoreBreakdown `json:"breakdown"`
	QuotaRemaining int64               `json:"quota_remaining"`
}

// ScoringService is the product scoring front.
type ScoringService struct {
	scores   *biz.ScoreUsecase
	analyses *biz.AnalysisUsecase
	sessions *biz.SessionUsecase
	quota    *biz.QuotaUsecase
	log      *log.Helper
}

// NewScoringService creates a ScoringService.
func NewScoringService(
	scores *biz.ScoreUsecase,
	analyses *biz.AnalysisUsecase,
	sessions *biz.SessionUsecase,
	quota *biz.QuotaUsecase,
	logger log.Logger,
) *ScoringService {
	return &ScoringService{
		scores:   scores,
		analyses: analyses,
		sessions: sessions,
		quota:    quota,
		log:      log.NewHelper(logger),
	}
}

// Score authenticates the caller, spends one scan from their daily
// allowance and scores the product. The scan is refunded if scoring
// itself fails.
func (s *ScoringService) Score(ctx context.Context, in *ScoreRequest) (*ScoreReply, error) {
	category := biz.ProductCategory(in.Category)
	if !category.IsFood() && category != biz.CategoryHousehold {
		return nil, errors.BadRequest("CATEGORY_INVALID", "category must be food, beverage or household")
	}

	session, err := s.sessions.GetSession(ctx, in.SessionToken)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.IsActive {
		return nil, errors.Unauthorized("SESSION_INVALID", "session is missing or expired")
	}

	remaining, err := s.quota.Consume(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, biz.ErrQuotaExceeded) {
			return nil, errors.New(429, "QUOTA_EXCEEDED", "daily scan quota exceeded")
		}
		return nil, err
	}

	breakdown, err := s.scores.Score(ctx, &biz.Product{
		ID:             in.ProductID,
		Barcode:        in.Barcode,
		Name:           in.Name,
		Category:       category,
		Ingredients:    in.Ingredients,
		Certifications: in.Certifications,
		Nutrition:      in.Nutrition,
	})
	if err != nil {
		if rerr := s.quota.Refund(ctx, session.UserID); rerr != nil {
			s.log.Warnf("Score: quota refund for user=%s: %v", session.UserID, rerr)
		}
		return nil, err
	}

	return &ScoreReply{Breakdown: breakdown, QuotaRemaining: remaining}, nil
}

// GetAnalysis returns a cached analysis by id.
func (s *ScoringService) GetAnalysis(ctx context.Context, id string) (*biz.AnalysisRecord, error) {
	record, err := s.analyses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.NotFound("ANALYSIS_NOT_FOUND", "no cached analysis for this id")
	}
	return record, nil
}

// GetAnalysisByBarcode returns a cached analysis by barcode.
func (s *ScoringService) GetAnalysisByBarcode(ctx context.Context, barcode string) (*biz.AnalysisRecord, error) {
	record, err := s.analyses.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.NotFound("ANALYSIS_NOT_FOUND", "no cached analysis for this barcode")
	}
	return record, nil
}

// GetAnalysesByBarcodes returns the cached analyses for a batch of
// barcodes, keyed by barcode. Unknown barcodes are simply absent.
func (s *ScoringService) GetAnalysesByBarcodes(ctx context.Context, barcodes []string) (map[string]*biz.AnalysisRecord, error) {
	return s.analyses.GetByBarcodes(ctx, barcodes)
}
