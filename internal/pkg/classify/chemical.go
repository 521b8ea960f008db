package classify

import (
	"fmt"
	"sort"
	"strings"

	"ecoscore/internal/pkg/refdata"
)

// Chemical sub-score weights. Together they must sum to 1.
const (
	WeightEcotoxicity      = 0.30
	WeightBiodegradability = 0.25
	WeightIrritation       = 0.25
	WeightEnvironmental    = 0.20
)

// Recommendation levels derived from the composite chemical score.
const (
	ChemicalNearPerfect          = "near-perfect"
	ChemicalCertifiedAlternative = "certified-alternative"
	ChemicalUrgentReplacement    = "urgent-replacement"
)

// ChemicalBreakdown holds the four weighted sub-scores, each in [0,100].
type ChemicalBreakdown struct {
	Ecotoxicity      float64
	Biodegradability float64
	Irritation       float64
	Environmental    float64
}

// ChemicalResult scores a household-chemical product.
type ChemicalResult struct {
	Score                  float64
	Breakdown              ChemicalBreakdown
	DetectedIssues         []string
	DetectedCertifications []string
	Recommendation         string
	Confidence             float64
}

// ChemicalRiskScorer scores non-food products from harmful/eco ingredient
// tables and certification bonuses.
type ChemicalRiskScorer struct {
	tables *refdata.Tables
}

// NewChemicalRiskScorer creates a scorer over the given tables.
func NewChemicalRiskScorer(tables *refdata.Tables) *ChemicalRiskScorer {
	return &ChemicalRiskScorer{tables: tables}
}

// Score evaluates a normalized ingredient list and the product's declared
// certifications. Each sub-score starts at 100 and accumulates penalties
// and bonuses before clamping.
func (s *ChemicalRiskScorer) Score(ingredients, certifications []string) ChemicalResult {
	t := &s.tables.Chemical
	b := ChemicalBreakdown{
		Ecotoxicity:      100,
		Biodegradability: 100,
		Irritation:       100,
		Environmental:    100,
	}

	var issues []string
	for _, h := range t.Harmful {
		if !containsAny(ingredients, h.Name) {
			continue
		}
		issues = append(issues, h.Name)

		b.Ecotoxicity -= float64(h.Toxicity) * 10
		if h.Carcinogen {
			b.Ecotoxicity -= 15
		}
		if h.NonBiodegradable {
			b.Biodegradability -= 25
			b.Environmental -= 10
		}
		b.Irritation -= float64(h.Irritation) * 10
		if h.Allergen {
			b.Irritation -= 10
		}
		b.Environmental -= float64(h.Toxicity) * 5
	}

	for _, e := range t.Eco {
		if !containsAny(ingredients, e.Name) {
			continue
		}
		if e.Biodegradable {
			b.Biodegradability += 8
		}
		if e.PlantBased {
			b.Ecotoxicity += 5
			b.Environmental += 5
		}
		if e.Natural {
			b.Irritation += 5
		}
	}

	var detected []string
	for _, c := range t.Certifications {
		if !containsAny(certifications, c.Name) {
			continue
		}
		detected = append(detected, c.Name)
		b.Ecotoxicity += c.Bonus
		b.Biodegradability += c.Bonus
		b.Irritation += c.Bonus
		b.Environmental += c.Bonus
	}

	b.Ecotoxicity = clamp(b.Ecotoxicity, 0, 100)
	b.Biodegradability = clamp(b.Biodegradability, 0, 100)
	b.Irritation = clamp(b.Irritation, 0, 100)
	b.Environmental = clamp(b.Environmental, 0, 100)

	score := WeightEcotoxicity*b.Ecotoxicity +
		WeightBiodegradability*b.Biodegradability +
		WeightIrritation*b.Irritation +
		WeightEnvironmental*b.Environmental

	sort.Strings(issues)
	return ChemicalResult{
		Score:                  clamp(score, 0, 100),
		Breakdown:              b,
		DetectedIssues:         issues,
		DetectedCertifications: detected,
		Recommendation:         recommendationFor(score),
		Confidence:             chemicalConfidence(len(ingredients), len(issues)+len(detected)),
	}
}

// SubScoreWeights exposes the fixed weight split for aggregation.
func SubScoreWeights() map[string]float64 {
	return map[string]float64{
		"ecotoxicity":      WeightEcotoxicity,
		"biodegradability": WeightBiodegradability,
		"irritation":       WeightIrritation,
		"environmental":    WeightEnvironmental,
	}
}

// ValidateChemicalWeights checks the fixed split still sums to 1. A failure
// is a configuration bug and should abort startup.
func ValidateChemicalWeights() error {
	sum := WeightEcotoxicity + WeightBiodegradability + WeightIrritation + WeightEnvironmental
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("chemical sub-score weights sum to %.3f, want 1.0", sum)
	}
	return nil
}

func recommendationFor(score float64) string {
	switch {
	case score >= 80:
		return ChemicalNearPerfect
	case score >= 60:
		return ChemicalCertifiedAlternative
	default:
		return ChemicalUrgentReplacement
	}
}

// chemicalConfidence grows with the amount of declared composition and with
// any table evidence actually found.
func chemicalConfidence(ingredientCount, detections int) float64 {
	if ingredientCount == 0 {
		return 0.2
	}
	conf := 0.4 + 0.05*float64(min(ingredientCount, 8))
	if detections > 0 {
		conf += 0.15
	}
	return clamp(conf, 0, 0.95)
}

// containsAny reports whether any normalized entry contains term.
func containsAny(entries []string, term string) bool {
	for _, e := range entries {
		if strings.Contains(e, term) {
			return true
		}
	}
	return false
}
