package classify

import (
	"ecoscore/internal/pkg/refdata"
)

const (
	kcalToKJ           = 4.184
	saltGramToSodiumMg = 400 // 1g salt ~ 400mg sodium
)

// NutritionGradeResult is a letter grade with its point breakdown. Grade
// and Score are nil when too few fields were supplied to grade honestly;
// returning nil instead of a fabricated grade is part of the contract.
type NutritionGradeResult struct {
	Score          *int
	Grade          *string
	Confidence     float64
	NegativePoints int
	PositivePoints int
	IsBeverage     bool
}

// NutritionGradeCalculator computes official-style A-E nutrition grades
// from per-100g facts.
type NutritionGradeCalculator struct {
	tables *refdata.Tables
}

// NewNutritionGradeCalculator creates a calculator over the given tables.
func NewNutritionGradeCalculator(tables *refdata.Tables) *NutritionGradeCalculator {
	return &NutritionGradeCalculator{tables: tables}
}

// Calculate grades the given facts. Beverages use their own steeper energy
// and sugar scales and their own grade buckets.
func (c *NutritionGradeCalculator) Calculate(facts NutritionFacts, beverage bool) NutritionGradeResult {
	t := &c.tables.Nutrition
	result := NutritionGradeResult{IsBeverage: beverage}

	result.Confidence = c.confidence(facts)
	if result.Confidence < t.MinConfidence {
		// Hard contract: below the minimum confidence no grade is
		// produced at all.
		return result
	}

	energyKJ := value(facts.EnergyKJ)
	if energyKJ == 0 && supplied(facts.EnergyKcal) {
		energyKJ = value(facts.EnergyKcal) * kcalToKJ
	}
	sodiumMg := value(facts.SodiumMg)
	if sodiumMg == 0 && supplied(facts.Salt) {
		sodiumMg = value(facts.Salt) * saltGramToSodiumMg
	}

	energyThs := t.Negative.EnergyKJ
	sugarThs := t.Negative.Sugars
	if beverage {
		energyThs = t.NegativeBeverage.EnergyKJ
		sugarThs = t.NegativeBeverage.Sugars
	}

	negative := pointsFor(energyKJ, energyThs) +
		pointsFor(value(facts.SaturatedFat), t.Negative.SaturatedFat) +
		pointsFor(value(facts.Sugars), sugarThs) +
		pointsFor(sodiumMg, t.Negative.SodiumMg)

	fruitVeg := bandPoints(value(facts.FruitVegPercent), t.Positive.FruitVegBands)
	fiber := pointsFor(value(facts.Fiber), t.Positive.Fiber)
	protein := pointsFor(value(facts.Proteins), t.Positive.Protein)

	positive := fruitVeg + fiber + protein
	// High-negative products only get protein credit alongside maximal
	// fruit/vegetable content.
	if negative >= 11 && fruitVeg < 5 {
		positive = fruitVeg + fiber
	}

	score := negative - positive
	grade := gradeFor(score, t.GradesSolid, "E")
	if beverage {
		grade = gradeFor(score, t.GradesBeverage, "E")
	}

	result.NegativePoints = negative
	result.PositivePoints = positive
	result.Score = &score
	result.Grade = &grade
	return result
}

// confidence is the weighted fraction of required fields actually supplied.
func (c *NutritionGradeCalculator) confidence(facts NutritionFacts) float64 {
	w := c.tables.Nutrition.ConfidenceWeights
	var conf float64
	if supplied(facts.EnergyKJ) || supplied(facts.EnergyKcal) {
		conf += w["energy"]
	}
	if supplied(facts.Sugars) {
		conf += w["sugars"]
	}
	if supplied(facts.SaturatedFat) {
		conf += w["saturated_fat"]
	}
	if supplied(facts.SodiumMg) || supplied(facts.Salt) {
		conf += w["sodium"]
	}
	if supplied(facts.Fiber) {
		conf += w["fiber"]
	}
	if supplied(facts.Proteins) {
		conf += w["proteins"]
	}
	return clamp(conf, 0, 1)
}

// pointsFor awards one point per threshold strictly exceeded.
func pointsFor(v float64, thresholds []float64) int {
	points := 0
	for _, t := range thresholds {
		if v > t {
			points++
		}
	}
	return points
}

// bandPoints awards the points of the highest band the value exceeds.
func bandPoints(v float64, bands []refdata.PointBand) int {
	points := 0
	for _, b := range bands {
		if v > b.Gt {
			points = b.Points
		}
	}
	return points
}

// gradeFor picks the first band whose Max covers score, else the fallback.
func gradeFor(score int, bands []refdata.GradeBand, fallback string) string {
	for _, b := range bands {
		if float64(score) <= b.Max {
			return b.Grade
		}
	}
	return fallback
}
