package classify

// Overall confidence blend weights. The overall confidence is never simply
// the minimum or maximum of the component confidences: richness of the
// ingredient list and presence of nutrition data are weighed in explicitly.
const (
	blendIngredientRichness = 0.25
	blendNutritionPresence  = 0.15
	blendComponentMean      = 0.60
)

// ConfidenceCalculator maps data-completeness signals to a 0-1 confidence.
type ConfidenceCalculator struct{}

// NewConfidenceCalculator creates a ConfidenceCalculator.
func NewConfidenceCalculator() *ConfidenceCalculator {
	return &ConfidenceCalculator{}
}

// IngredientRichness scores how much signal an ingredient list carries.
func (c *ConfidenceCalculator) IngredientRichness(count int) float64 {
	switch {
	case count == 0:
		return 0
	case count <= 2:
		return 0.5
	case count <= 7:
		return 0.8
	default:
		return 1.0
	}
}

// NutritionPresence scores whether any nutrition facts were supplied.
func (c *ConfidenceCalculator) NutritionPresence(facts NutritionFacts) float64 {
	suppliedCount := 0
	for _, f := range []*float64{
		facts.EnergyKcal, facts.EnergyKJ, facts.Fat, facts.SaturatedFat,
		facts.Carbohydrates, facts.Sugars, facts.Fiber, facts.Proteins,
		facts.Salt, facts.SodiumMg, facts.FruitVegPercent,
	} {
		if supplied(f) {
			suppliedCount++
		}
	}
	if suppliedCount == 0 {
		return 0
	}
	return clamp(float64(suppliedCount)/6.0, 0, 1)
}

// Overall blends ingredient richness, nutrition presence and the component
// confidences already computed.
func (c *ConfidenceCalculator) Overall(richness, nutritionPresence float64, componentConfidences []float64) float64 {
	var mean float64
	if len(componentConfidences) > 0 {
		var sum float64
		for _, cc := range componentConfidences {
			sum += cc
		}
		mean = sum / float64(len(componentConfidences))
	}
	blend := blendIngredientRichness*richness +
		blendNutritionPresence*nutritionPresence +
		blendComponentMean*mean
	return clamp(blend, 0, 1)
}
