package classify

import (
	"testing"
)

func f(v float64) *float64 { return &v }

func TestNutritionGrade_OfficialScenario(t *testing.T) {
	c := NewNutritionGradeCalculator(loadTables(t))

	// 180 kJ scores no energy points; 10.6g sugars scores 2; everything
	// else is zero, so the final score is +2 and the grade is B.
	got := c.Calculate(NutritionFacts{
		EnergyKJ:     f(180),
		SaturatedFat: f(0),
		Sugars:       f(10.6),
		SodiumMg:     f(0),
		Fiber:        f(0),
		Proteins:     f(0),
	}, false)

	if got.Grade == nil || got.Score == nil {
		t.Fatalf("expected a grade, got %+v", got)
	}
	if *got.Grade != "A" && *got.Grade != "B" {
		t.Errorf("grade = %s, want A or B", *got.Grade)
	}
	if *got.Score != 2 {
		t.Errorf("score = %d, want 2", *got.Score)
	}
	if got.NegativePoints != 2 || got.PositivePoints != 0 {
		t.Errorf("points = %d/-%d, want 2/-0", got.NegativePoints, got.PositivePoints)
	}
}

func TestNutritionGrade_InsufficientDataReturnsNil(t *testing.T) {
	c := NewNutritionGradeCalculator(loadTables(t))

	// Only sugars supplied: weighted confidence 0.2 < 0.4 minimum.
	got := c.Calculate(NutritionFacts{Sugars: f(10)}, false)

	if got.Grade != nil || got.Score != nil {
		t.Fatalf("expected nil grade below minimum confidence, got %+v", got)
	}
	if got.Confidence >= 0.4 {
		t.Errorf("confidence = %v, want < 0.4", got.Confidence)
	}
}

func TestNutritionGrade_NegativeNutrientMonotonic(t *testing.T) {
	c := NewNutritionGradeCalculator(loadTables(t))

	base := NutritionFacts{
		EnergyKJ:     f(1000),
		SaturatedFat: f(2),
		Sugars:       f(5),
		SodiumMg:     f(200),
		Fiber:        f(2),
		Proteins:     f(5),
	}

	prev := -100
	for _, sugars := range []float64{0, 5, 10, 20, 30, 50} {
		facts := base
		facts.Sugars = f(sugars)
		got := c.Calculate(facts, false)
		if got.Score == nil {
			t.Fatalf("unexpected nil score at sugars=%v", sugars)
		}
		if *got.Score < prev {
			t.Fatalf("increasing sugars improved the score: %d < %d at sugars=%v", *got.Score, prev, sugars)
		}
		prev = *got.Score
	}
}

func TestNutritionGrade_PositiveNutrientMonotonic(t *testing.T) {
	c := NewNutritionGradeCalculator(loadTables(t))

	base := NutritionFacts{
		EnergyKJ:     f(1000),
		SaturatedFat: f(2),
		Sugars:       f(5),
		SodiumMg:     f(200),
		Fiber:        f(0),
		Proteins:     f(5),
	}

	prev := 100
	for _, fiber := range []float64{0, 1, 2, 3, 4, 6} {
		facts := base
		facts.Fiber = f(fiber)
		got := c.Calculate(facts, false)
		if got.Score == nil {
			t.Fatalf("unexpected nil score at fiber=%v", fiber)
		}
		if *got.Score > prev {
			t.Fatalf("increasing fiber worsened the score: %d > %d at fiber=%v", *got.Score, prev, fiber)
		}
		prev = *got.Score
	}
}

func TestNutritionGrade_BeverageScaleIsSteeper(t *testing.T) {
	c := NewNutritionGradeCalculator(loadTables(t))

	facts := NutritionFacts{
		EnergyKJ:     f(180),
		SaturatedFat: f(0),
		Sugars:       f(10.6),
		SodiumMg:     f(0),
		Fiber:        f(0),
		Proteins:     f(0),
	}

	solid := c.Calculate(facts, false)
	beverage := c.Calculate(facts, true)

	if solid.Score == nil || beverage.Score == nil {
		t.Fatal("expected scores for both variants")
	}
	if *beverage.Score <= *solid.Score {
		t.Errorf("beverage score %d should exceed solid score %d for a sugary drink",
			*beverage.Score, *solid.Score)
	}
	if *beverage.Grade <= *solid.Grade {
		t.Errorf("beverage grade %s should be worse than solid grade %s",
			*beverage.Grade, *solid.Grade)
	}
}

func TestNutritionGrade_UnitConversions(t *testing.T) {
	c := NewNutritionGradeCalculator(loadTables(t))

	// 100 kcal = 418.4 kJ, which exceeds the first 335 kJ threshold.
	kcal := c.Calculate(NutritionFacts{
		EnergyKcal:   f(100),
		SaturatedFat: f(0),
		Sugars:       f(0),
		SodiumMg:     f(0),
		Fiber:        f(0),
		Proteins:     f(0),
	}, false)
	if kcal.NegativePoints != 1 {
		t.Errorf("kcal conversion: negative points = %d, want 1", kcal.NegativePoints)
	}

	// 1g salt = 400mg sodium, exceeding four sodium thresholds.
	salt := c.Calculate(NutritionFacts{
		EnergyKJ:     f(0),
		SaturatedFat: f(0),
		Sugars:       f(0),
		Salt:         f(1),
		Fiber:        f(0),
		Proteins:     f(0),
	}, false)
	if salt.NegativePoints != 4 {
		t.Errorf("salt conversion: negative points = %d, want 4", salt.NegativePoints)
	}
}

func TestNutritionGrade_NegativeValuesClamped(t *testing.T) {
	c := NewNutritionGradeCalculator(loadTables(t))

	got := c.Calculate(NutritionFacts{
		EnergyKJ:     f(-50),
		SaturatedFat: f(-1),
		Sugars:       f(-3),
		SodiumMg:     f(0),
		Fiber:        f(0),
		Proteins:     f(0),
	}, false)

	// Negative inputs are treated as absent, which drops confidence below
	// the grading minimum rather than producing a bogus grade.
	if got.Grade != nil {
		t.Errorf("expected nil grade for mostly-invalid input, got %v", *got.Grade)
	}
}
