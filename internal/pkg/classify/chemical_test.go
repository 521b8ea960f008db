package classify

import (
	"testing"
)

func TestChemicalRiskScorer_EcoFormulation(t *testing.T) {
	s := NewChemicalRiskScorer(loadTables(t))

	got := s.Score(
		[]string{"vinaigre blanc", "bicarbonate de soude", "huile essentielle de citron"},
		[]string{"ecocert"},
	)

	if got.Score < 80 {
		t.Errorf("score = %v, want >= 80 for an eco formulation", got.Score)
	}
	if got.Recommendation != ChemicalNearPerfect {
		t.Errorf("recommendation = %s, want %s", got.Recommendation, ChemicalNearPerfect)
	}
	if len(got.DetectedCertifications) != 1 || got.DetectedCertifications[0] != "ecocert" {
		t.Errorf("certifications = %v, want [ecocert]", got.DetectedCertifications)
	}
	if len(got.DetectedIssues) != 0 {
		t.Errorf("issues = %v, want none", got.DetectedIssues)
	}
}

func TestChemicalRiskScorer_HarshFormulation(t *testing.T) {
	s := NewChemicalRiskScorer(loadTables(t))

	got := s.Score(
		[]string{"hypochlorite de sodium", "ammonium quaternaire", "parfum de synthese"},
		nil,
	)

	if got.Score >= 60 {
		t.Errorf("score = %v, want < 60 for a harsh formulation", got.Score)
	}
	if got.Recommendation != ChemicalUrgentReplacement {
		t.Errorf("recommendation = %s, want %s", got.Recommendation, ChemicalUrgentReplacement)
	}
	if len(got.DetectedIssues) != 3 {
		t.Errorf("issues = %v, want all three harmful ingredients", got.DetectedIssues)
	}
}

func TestChemicalRiskScorer_SubScoresBounded(t *testing.T) {
	s := NewChemicalRiskScorer(loadTables(t))

	got := s.Score([]string{
		"formaldehyde", "benzalkonium chloride", "triclosan",
		"chlorine", "phosphates", "edta", "microplastiques",
	}, nil)

	for name, v := range map[string]float64{
		"ecotoxicity":      got.Breakdown.Ecotoxicity,
		"biodegradability": got.Breakdown.Biodegradability,
		"irritation":       got.Breakdown.Irritation,
		"environmental":    got.Breakdown.Environmental,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s sub-score %v out of [0,100]", name, v)
		}
	}
	if got.Score < 0 || got.Score > 100 {
		t.Errorf("score %v out of [0,100]", got.Score)
	}
}

func TestChemicalRiskScorer_WeightedSplit(t *testing.T) {
	if err := ValidateChemicalWeights(); err != nil {
		t.Fatalf("weight validation failed: %v", err)
	}

	s := NewChemicalRiskScorer(loadTables(t))
	got := s.Score([]string{"phosphates"}, nil)

	want := WeightEcotoxicity*got.Breakdown.Ecotoxicity +
		WeightBiodegradability*got.Breakdown.Biodegradability +
		WeightIrritation*got.Breakdown.Irritation +
		WeightEnvironmental*got.Breakdown.Environmental
	if got.Score != want {
		t.Errorf("score = %v, want weighted sum %v", got.Score, want)
	}
}

func TestChemicalRiskScorer_EmptyIngredientsLowConfidence(t *testing.T) {
	s := NewChemicalRiskScorer(loadTables(t))
	got := s.Score(nil, nil)

	if got.Confidence > 0.3 {
		t.Errorf("confidence = %v, want low for an undeclared composition", got.Confidence)
	}
}
