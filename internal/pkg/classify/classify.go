// Package classify contains the deterministic scoring engines: processing
// level, additive risk, nutrition grade, glycemic impact and household
// chemical risk. Every engine is a pure function over its inputs and the
// injected reference tables, safe for concurrent use.
package classify

// NutritionFacts are per-100g values. Nil means the field was not supplied;
// scoring treats missing values as zero but confidence degrades.
type NutritionFacts struct {
	EnergyKcal      *float64
	EnergyKJ        *float64
	Fat             *float64
	SaturatedFat    *float64
	Carbohydrates   *float64
	Sugars          *float64
	Fiber           *float64
	Proteins        *float64
	Salt            *float64
	SodiumMg        *float64
	FruitVegPercent *float64
}

// value returns a field treated defensively: missing or negative values
// score as zero so malformed input never aborts the pipeline.
func value(f *float64) float64 {
	if f == nil || *f < 0 {
		return 0
	}
	return *f
}

func supplied(f *float64) bool {
	return f != nil && *f >= 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
