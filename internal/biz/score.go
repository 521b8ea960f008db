package biz

import (
	"context"
	"fmt"
	"math"
	"time"

	"ecoscore/internal/pkg/classify"
	"ecoscore/internal/pkg/normalize"
	"ecoscore/internal/pkg/refdata"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// ProductCategory selects which classifier pipeline scores a product.
type ProductCategory string

const (
	CategoryFood      ProductCategory = "food"
	CategoryBeverage  ProductCategory = "beverage"
	CategoryHousehold ProductCategory = "household"
)

// IsFood reports whether the food pipeline applies.
func (c ProductCategory) IsFood() bool {
	return c == CategoryFood || c == CategoryBeverage
}

// Product is the descriptor callers submit for scoring.
type Product struct {
	ID             string
	Barcode        string
	Name           string
	Category       ProductCategory
	Ingredients    []string
	Certifications []string
	Nutrition      classify.NutritionFacts
}

// ScoreBreakdown is the aggregate scoring result. It is immutable once
// built and always produced, whatever the input quality.
type ScoreBreakdown struct {
	Score                float64            `json:"score"`
	Confidence           float64            `json:"confidence"`
	Components           map[string]float64 `json:"components"`
	Weights              map[string]float64 `json:"weights"`
	ImprovementSuggested bool               `json:"improvement_suggested"`
	FromCache            bool               `json:"from_cache"`
	ComputedAt           time.Time          `json:"computed_at"`

	Processing *classify.ProcessingResult     `json:"processing,omitempty"`
	Additives  *classify.AdditiveResult       `json:"additives,omitempty"`
	Nutrition  *classify.NutritionGradeResult `json:"nutrition,omitempty"`
	Glycemic   *classify.GlycemicResult       `json:"glycemic,omitempty"`
	Chemical   *classify.ChemicalResult       `json:"chemical,omitempty"`
}

// foodWeights is the fixed aggregation weight vector for food products.
// Weights of the active category must sum to 1.
var foodWeights = map[string]float64{
	"processing": 0.30,
	"nutrition":  0.30,
	"additives":  0.20,
	"glycemic":   0.20,
}

// processingScores maps a processing group to a component score.
var processingScores = map[int]float64{1: 100, 2: 80, 3: 50, 4: 20}

// gradeScores maps a nutrition grade to a component score.
var gradeScores = map[string]float64{"A": 100, "B": 80, "C": 60, "D": 40, "E": 20}

// riskScores maps an additive risk level to a component score.
var riskScores = map[refdata.RiskLevel]float64{
	refdata.RiskLow:    85,
	refdata.RiskMedium: 60,
	refdata.RiskHigh:   30,
}

// neutralComponentScore stands in for a component that could not produce a
// trustworthy value; its confidence contribution is zero.
const neutralComponentScore = 50

// ScoreUsecase combines the classifiers into one product score and
// memoizes results through the analysis index.
type ScoreUsecase struct {
	processing *classify.ProcessingClassifier
	additives  *classify.AdditiveAnalyzer
	nutrition  *classify.NutritionGradeCalculator
	glycemic   *classify.GlycemicEstimator
	chemical   *classify.ChemicalRiskScorer
	confidence *classify.ConfidenceCalculator
	analyses   AnalysisRepo
	log        *log.Helper
}

// NewScoreUsecase creates a ScoreUsecase. It fails when the configured
// weight vectors do not sum to 1, which is a deployment bug.
func NewScoreUsecase(
	processing *classify.ProcessingClassifier,
	additives *classify.AdditiveAnalyzer,
	nutrition *classify.NutritionGradeCalculator,
	glycemic *classify.GlycemicEstimator,
	chemical *classify.ChemicalRiskScorer,
	confidence *classify.ConfidenceCalculator,
	analyses AnalysisRepo,
	logger log.Logger,
) (*ScoreUsecase, error) {
	var sum float64
	for _, w := range foodWeights {
		sum += w
	}
	if math.Abs(sum-1.0) > 0.01 {
		return nil, fmt.Errorf("food aggregation weights sum to %.3f, want 1.0", sum)
	}
	if err := classify.ValidateChemicalWeights(); err != nil {
		return nil, err
	}
	return &ScoreUsecase{
		processing: processing,
		additives:  additives,
		nutrition:  nutrition,
		glycemic:   glycemic,
		chemical:   chemical,
		confidence: confidence,
		analyses:   analyses,
		log:        log.NewHelper(logger),
	}, nil
}

// Score computes the composite score for a product, serving from the
// analysis cache when possible. It always returns a breakdown: cache
// failures and partial data degrade confidence instead of failing.
func (uc *ScoreUsecase) Score(ctx context.Context, p *Product) (*ScoreBreakdown, error) {
	if p == nil {
		return nil, fmt.Errorf("nil product")
	}

	ingredients := normalize.List(p.Ingredients)

	if cached, err := uc.analyses.GetByProduct(ctx, p.Name, string(p.Category), ingredients); err == nil && cached != nil && cached.Breakdown != nil {
		uc.log.Debugf("Score: cache hit for %q", p.Name)
		b := *cached.Breakdown
		b.FromCache = true
		return &b, nil
	}

	breakdown := uc.compute(p, ingredients)

	record := &AnalysisRecord{
		ID:          p.ID,
		Barcode:     p.Barcode,
		ProductName: p.Name,
		Category:    string(p.Category),
		Breakdown:   breakdown,
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	// Best effort; a failed write only costs a recomputation later.
	if err := uc.analyses.Cache(ctx, record, ingredients); err != nil {
		uc.log.Warnf("Score: caching analysis for %q failed: %v", p.Name, err)
	}

	return breakdown, nil
}

func (uc *ScoreUsecase) compute(p *Product, ingredients []string) *ScoreBreakdown {
	if p.Category == CategoryHousehold {
		return uc.computeHousehold(p, ingredients)
	}
	return uc.computeFood(p, ingredients)
}

func (uc *ScoreUsecase) computeFood(p *Product, ingredients []string) *ScoreBreakdown {
	proc := uc.processing.Classify(ingredients, normalize.Term(p.Name))
	adds := uc.additives.Analyze(ingredients)
	grade := uc.nutrition.Calculate(p.Nutrition, p.Category == CategoryBeverage)
	gly := uc.glycemic.Estimate(ingredients, p.Nutrition, proc.Group)

	components := map[string]float64{
		"processing": processingScores[proc.Group],
		"additives":  riskScores[adds.RiskLevel],
		"nutrition":  neutralComponentScore,
		"glycemic":   clampScore(100 - gly.Penalty*4),
	}
	if len(adds.Detected) == 0 && len(adds.Unknown) == 0 {
		components["additives"] = 100
	}

	componentConfidences := []float64{proc.Confidence, adds.Confidence}
	if grade.Grade != nil {
		components["nutrition"] = gradeScores[*grade.Grade]
		componentConfidences = append(componentConfidences, grade.Confidence)
	} else {
		// Insufficient nutrition data: the neutral component score stays
		// and contributes zero confidence.
		componentConfidences = append(componentConfidences, 0)
	}
	if gly.Status == classify.GlycemicStatusOK {
		componentConfidences = append(componentConfidences, gly.Confidence)
	} else {
		components["glycemic"] = neutralComponentScore
		componentConfidences = append(componentConfidences, 0)
	}

	var score float64
	for name, w := range foodWeights {
		score += w * components[name]
	}

	overall := uc.confidence.Overall(
		uc.confidence.IngredientRichness(len(ingredients)),
		uc.confidence.NutritionPresence(p.Nutrition),
		componentConfidences,
	)

	weights := make(map[string]float64, len(foodWeights))
	for name, w := range foodWeights {
		weights[name] = w
	}

	return &ScoreBreakdown{
		Score:                clampScore(score),
		Confidence:           overall,
		Components:           components,
		Weights:              weights,
		ImprovementSuggested: score < 60 || adds.RiskLevel == refdata.RiskHigh,
		ComputedAt:           time.Now(),
		Processing:           &proc,
		Additives:            &adds,
		Nutrition:            &grade,
		Glycemic:             &gly,
	}
}

func (uc *ScoreUsecase) computeHousehold(p *Product, ingredients []string) *ScoreBreakdown {
	certs := normalize.List(p.Certifications)
	chem := uc.chemical.Score(ingredients, certs)

	components := map[string]float64{
		"ecotoxicity":      chem.Breakdown.Ecotoxicity,
		"biodegradability": chem.Breakdown.Biodegradability,
		"irritation":       chem.Breakdown.Irritation,
		"environmental":    chem.Breakdown.Environmental,
	}

	overall := uc.confidence.Overall(
		uc.confidence.IngredientRichness(len(ingredients)),
		uc.confidence.NutritionPresence(p.Nutrition),
		[]float64{chem.Confidence},
	)

	return &ScoreBreakdown{
		Score:                clampScore(chem.Score),
		Confidence:           overall,
		Components:           components,
		Weights:              classify.SubScoreWeights(),
		ImprovementSuggested: chem.Score < 60,
		ComputedAt:           time.Now(),
		Chemical:             &chem,
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
