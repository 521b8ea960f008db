package data

import (
	"ecoscore/internal/pkg/classify"
	"ecoscore/internal/pkg/refdata"

	"github.com/google/wire"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewRedisCache,
	NewCacheStore,
	NewAnalysisRepo,
	NewSessionRepo,
	NewQuotaRepo,
	refdata.Load,
	classify.NewProcessingClassifier,
	classify.NewAdditiveAnalyzer,
	classify.NewNutritionGradeCalculator,
	classify.NewGlycemicEstimator,
	classify.NewChemicalRiskScorer,
	classify.NewConfidenceCalculator,
)
