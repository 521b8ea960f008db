package classify

import (
	"fmt"
	"strings"

	"ecoscore/internal/pkg/refdata"
)

// ProcessingMarkers lists what the classifier detected in the ingredient
// list.
type ProcessingMarkers struct {
	AdditiveCount     int
	Industrial        []string
	ProcessIndicators []string
	UltraProcessed    []string
}

// ProcessingResult is an ordinal processing-level classification, group 1
// (unprocessed) through group 4 (ultra-processed).
type ProcessingResult struct {
	Group      int
	Confidence float64
	Reasoning  []string
	Markers    ProcessingMarkers
}

// ProcessingClassifier assigns a processing group from rule tables.
type ProcessingClassifier struct {
	tables *refdata.Tables
}

// NewProcessingClassifier creates a ProcessingClassifier over the given
// reference tables.
func NewProcessingClassifier(tables *refdata.Tables) *ProcessingClassifier {
	return &ProcessingClassifier{tables: tables}
}

// Classify maps a normalized ingredient list and product name to a
// processing group. It never returns an error: an internal failure fails
// closed to group 1 with low confidence.
func (c *ProcessingClassifier) Classify(ingredients []string, productName string) (result ProcessingResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ProcessingResult{
				Group:      1,
				Confidence: 0.3,
				Reasoning:  []string{fmt.Sprintf("classification error, defaulted to group 1: %v", r)},
			}
		}
	}()

	markers := c.detect(ingredients, productName)
	result = ProcessingResult{Markers: markers}

	// Decision rules are evaluated in order; the first match wins.
	switch {
	case markers.AdditiveCount >= 3 || len(markers.Industrial) >= 2 || len(markers.UltraProcessed) > 0:
		result.Group = 4
		result.Reasoning = append(result.Reasoning, "ultra-processed markers present")
		if markers.AdditiveCount >= 3 {
			result.Reasoning = append(result.Reasoning, fmt.Sprintf("%d additives detected", markers.AdditiveCount))
		}
		if len(markers.Industrial) >= 2 {
			result.Reasoning = append(result.Reasoning, fmt.Sprintf("industrial ingredients: %s", strings.Join(markers.Industrial, ", ")))
		}
		if len(markers.UltraProcessed) > 0 {
			result.Reasoning = append(result.Reasoning, fmt.Sprintf("ultra-processed terms: %s", strings.Join(markers.UltraProcessed, ", ")))
		}
	case markers.AdditiveCount >= 1 || len(markers.ProcessIndicators) > 0 || len(ingredients) >= 8:
		result.Group = 3
		if markers.AdditiveCount >= 1 {
			result.Reasoning = append(result.Reasoning, fmt.Sprintf("%d additive(s) detected", markers.AdditiveCount))
		}
		if len(markers.ProcessIndicators) > 0 {
			result.Reasoning = append(result.Reasoning, fmt.Sprintf("process indicators: %s", strings.Join(markers.ProcessIndicators, ", ")))
		}
		if len(ingredients) >= 8 {
			result.Reasoning = append(result.Reasoning, fmt.Sprintf("long ingredient list (%d entries)", len(ingredients)))
		}
	case len(ingredients) >= 3 && len(ingredients) <= 7:
		result.Group = 2
		result.Reasoning = append(result.Reasoning, fmt.Sprintf("moderate ingredient list (%d entries)", len(ingredients)))
	default:
		result.Group = 1
		result.Reasoning = append(result.Reasoning, "no processing markers detected")
	}

	result.Confidence = c.confidence(ingredients, markers)
	return result
}

// confidence starts from a 0.3 base and grows with the evidence available.
func (c *ProcessingClassifier) confidence(ingredients []string, markers ProcessingMarkers) float64 {
	conf := 0.3
	if len(ingredients) > 0 {
		conf += 0.3
	}
	if markers.AdditiveCount > 0 {
		conf += 0.2
	}
	if len(markers.Industrial) > 0 {
		conf += 0.2
	}
	return clamp(conf, 0, 1)
}

func (c *ProcessingClassifier) detect(ingredients []string, productName string) ProcessingMarkers {
	markers := ProcessingMarkers{}
	detected := detectAdditives(&c.tables.Additives, ingredients)
	markers.AdditiveCount = len(detected.known) + len(detected.unknown)

	haystack := ingredients
	if productName != "" {
		haystack = append(append([]string{}, ingredients...), productName)
	}

	markers.Industrial = matchTerms(haystack, c.tables.Processing.Industrial)
	markers.ProcessIndicators = matchTerms(haystack, c.tables.Processing.ProcessIndicators)
	markers.UltraProcessed = matchTerms(haystack, c.tables.Processing.UltraProcessed)
	return markers
}

// matchTerms returns the table terms contained in any of the given
// normalized texts, deduplicated in table order.
func matchTerms(texts, terms []string) []string {
	var found []string
	for _, term := range terms {
		for _, text := range texts {
			if strings.Contains(text, term) {
				found = append(found, term)
				break
			}
		}
	}
	return found
}
