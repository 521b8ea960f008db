package classify

import (
	"fmt"
	"strings"

	"ecoscore/internal/pkg/normalize"
	"ecoscore/internal/pkg/refdata"
)

// Glycemic match confidence tiers.
const (
	giExactConfidence     = 0.95
	giSubstringConfidence = 0.85
	giMatchFloor          = 0.3
)

// Glycemic categories.
const (
	GlycemicLow     = "low"
	GlycemicMedium  = "medium"
	GlycemicHigh    = "high"
	GlycemicUnknown = "unknown"
)

// Estimate statuses.
const (
	GlycemicStatusOK               = "ok"
	GlycemicStatusInsufficientData = "insufficient_data"
)

// GlycemicResult is the estimated glycemic impact of a product. Index and
// Load are nil when no reference entry matched; a number is never invented
// for unmatched products.
type GlycemicResult struct {
	Index             *float64
	Load              *float64
	Category          string
	Confidence        float64
	Status            string
	MatchedIngredient string
	ModifiersApplied  []string
	Penalty           float64
}

// GlycemicEstimator matches ingredients against a glycemic-index reference
// set and adjusts the base index by nutritional and processing modifiers.
type GlycemicEstimator struct {
	tables *refdata.Tables
}

// NewGlycemicEstimator creates a GlycemicEstimator over the given tables.
func NewGlycemicEstimator(tables *refdata.Tables) *GlycemicEstimator {
	return &GlycemicEstimator{tables: tables}
}

// Estimate derives the glycemic estimate for a normalized ingredient list.
// processingGroup is the product's already-computed processing group (1-4).
func (e *GlycemicEstimator) Estimate(ingredients []string, facts NutritionFacts, processingGroup int) GlycemicResult {
	t := &e.tables.Glycemic

	base, matched, conf := e.bestMatch(ingredients)
	if base < 0 {
		base, matched, conf = e.heuristicMatch(ingredients)
	}
	if base < 0 {
		return GlycemicResult{
			Category: GlycemicUnknown,
			Status:   GlycemicStatusInsufficientData,
		}
	}

	result := GlycemicResult{
		Status:            GlycemicStatusOK,
		Confidence:        conf,
		MatchedIngredient: matched,
	}

	index := base
	index, result.ModifiersApplied = applyBand(index, value(facts.Fiber), t.FiberBands, "fiber", result.ModifiersApplied)
	index, result.ModifiersApplied = applyBand(index, value(facts.Fat), t.FatBands, "fat", result.ModifiersApplied)
	index, result.ModifiersApplied = applyBand(index, value(facts.Proteins), t.ProteinBands, "protein", result.ModifiersApplied)

	pf := t.ProcessingFactors[processingLabel(processingGroup)]
	index *= pf
	result.ModifiersApplied = append(result.ModifiersApplied,
		fmt.Sprintf("processing:%s x%.2f", processingLabel(processingGroup), pf))

	index = clamp(index, 0, 100)
	result.Index = &index

	if supplied(facts.Carbohydrates) {
		load := index * value(facts.Carbohydrates) / 100
		result.Load = &load
	}

	result.Category = glycemicCategory(index, result.Load)
	result.Penalty = penaltyFor(index, t.PenaltyBands)
	return result
}

// bestMatch returns the highest-confidence reference match at or above the
// floor, or -1 when nothing clears it.
func (e *GlycemicEstimator) bestMatch(ingredients []string) (gi float64, matched string, conf float64) {
	gi = -1
	for _, ing := range ingredients {
		for name, index := range e.tables.Glycemic.Index {
			c := matchConfidence(ing, name)
			if c < giMatchFloor {
				continue
			}
			if c > conf || (c == conf && index > gi) {
				gi, matched, conf = index, name, c
			}
		}
	}
	return gi, matched, conf
}

// heuristicMatch falls back to keyword category patterns with a lower
// confidence than any table match.
func (e *GlycemicEstimator) heuristicMatch(ingredients []string) (gi float64, matched string, conf float64) {
	gi = -1
	for _, h := range e.tables.Glycemic.Heuristics {
		for _, kw := range h.Keywords {
			for _, ing := range ingredients {
				if strings.Contains(ing, kw) {
					if h.Confidence > conf {
						gi, matched, conf = h.Index, h.Label, h.Confidence
					}
				}
			}
		}
	}
	return gi, matched, conf
}

// matchConfidence is the fuzzy confidence between an ingredient and a
// reference entry: exact, substring containment, then word-overlap tiers.
func matchConfidence(ingredient, ref string) float64 {
	if ingredient == ref {
		return giExactConfidence
	}
	if strings.Contains(ingredient, ref) || strings.Contains(ref, ingredient) {
		return giSubstringConfidence
	}

	ingTokens := normalize.Tokens(ingredient)
	refTokens := normalize.Tokens(ref)
	if len(ingTokens) == 0 || len(refTokens) == 0 {
		return 0
	}
	refSet := make(map[string]struct{}, len(refTokens))
	for _, tok := range refTokens {
		refSet[tok] = struct{}{}
	}
	overlap := 0
	for _, tok := range ingTokens {
		if _, ok := refSet[tok]; ok {
			overlap++
		}
	}
	longest := len(ingTokens)
	if len(refTokens) > longest {
		longest = len(refTokens)
	}
	ratio := float64(overlap) / float64(longest)
	switch {
	case ratio >= 0.75:
		return 0.7
	case ratio >= 0.5:
		return 0.5
	case ratio >= 0.25:
		return 0.3
	default:
		return 0
	}
}

// applyBand multiplies index by the factor of the first band covering v and
// records the applied modifier. Band position names the level low/medium/high.
func applyBand(index, v float64, bands []refdata.ModifierBand, label string, applied []string) (float64, []string) {
	levels := []string{"low", "medium", "high"}
	for i, b := range bands {
		if b.Max == nil || v <= *b.Max {
			level := "high"
			if i < len(levels) {
				level = levels[i]
			}
			return index * b.Factor, append(applied, fmt.Sprintf("%s:%s x%.2f", label, level, b.Factor))
		}
	}
	return index, applied
}

func processingLabel(group int) string {
	switch {
	case group >= 4:
		return "ultra"
	case group == 3:
		return "processed"
	default:
		return "minimal"
	}
}

// glycemicCategory is the more restrictive of the index-based and
// load-based classifications.
func glycemicCategory(index float64, load *float64) string {
	cat := GlycemicLow
	switch {
	case index >= 70:
		cat = GlycemicHigh
	case index > 55:
		cat = GlycemicMedium
	}
	if load != nil {
		loadCat := GlycemicLow
		switch {
		case *load >= 20:
			loadCat = GlycemicHigh
		case *load >= 10:
			loadCat = GlycemicMedium
		}
		if severity(loadCat) > severity(cat) {
			cat = loadCat
		}
	}
	return cat
}

func severity(cat string) int {
	switch cat {
	case GlycemicMedium:
		return 1
	case GlycemicHigh:
		return 2
	default:
		return 0
	}
}

// penaltyFor is a monotonic step function of the final index.
func penaltyFor(index float64, bands []refdata.PenaltyBand) float64 {
	for _, b := range bands {
		if b.Max == nil || index <= *b.Max {
			return b.Penalty
		}
	}
	return 0
}
