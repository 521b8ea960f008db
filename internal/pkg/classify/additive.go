package classify

import (
	"regexp"
	"sort"
	"strings"

	"ecoscore/internal/pkg/refdata"
)

// additiveCodePattern matches E-number codes, optionally with the letter
// suffix some colourants carry (e.g. E150d).
var additiveCodePattern = regexp.MustCompile(`(?i)\be[\s-]?(\d{3,4}[a-e]?)\b`)

// AdditiveResult reports the additives detected in an ingredient list and
// the aggregate risk they represent.
type AdditiveResult struct {
	Detected    []refdata.Additive
	Unknown     []string // codes that look like additives but have no table entry
	RiskLevel   refdata.RiskLevel
	RiskFactors []string
	Confidence  float64
}

// AdditiveAnalyzer detects additive codes and names against the reference
// table and aggregates their risk.
type AdditiveAnalyzer struct {
	tables *refdata.Tables
}

// NewAdditiveAnalyzer creates an AdditiveAnalyzer over the given tables.
func NewAdditiveAnalyzer(tables *refdata.Tables) *AdditiveAnalyzer {
	return &AdditiveAnalyzer{tables: tables}
}

// Analyze inspects a normalized ingredient list for additives.
func (a *AdditiveAnalyzer) Analyze(ingredients []string) AdditiveResult {
	detected := detectAdditives(&a.tables.Additives, ingredients)

	result := AdditiveResult{
		Detected:  detected.known,
		Unknown:   detected.unknown,
		RiskLevel: refdata.RiskLow,
	}

	concerns := make(map[string]struct{})
	for _, add := range detected.known {
		if add.Risk.Rank() > result.RiskLevel.Rank() {
			result.RiskLevel = add.Risk
		}
		for _, c := range add.Concerns {
			concerns[c] = struct{}{}
		}
	}
	for c := range concerns {
		result.RiskFactors = append(result.RiskFactors, c)
	}
	sort.Strings(result.RiskFactors)

	// Cumulative-effect rule: an additive cocktail escalates the risk
	// level regardless of individual severities.
	total := len(detected.known) + len(detected.unknown)
	switch {
	case total >= 5:
		result.RiskLevel = refdata.RiskHigh
		result.RiskFactors = append(result.RiskFactors, "additive cocktail (5+ distinct additives)")
	case total >= 3 && result.RiskLevel.Rank() < refdata.RiskMedium.Rank():
		result.RiskLevel = refdata.RiskMedium
		result.RiskFactors = append(result.RiskFactors, "multiple additives combined")
	}

	result.Confidence = additiveConfidence(len(detected.known), len(detected.unknown))
	return result
}

// additiveConfidence: an empty detection is informative (0.8); otherwise the
// confidence tracks how much of what was detected the table actually knows.
func additiveConfidence(known, unknown int) float64 {
	total := known + unknown
	if total == 0 {
		return 0.8
	}
	conf := float64(known) / float64(total)
	if conf < 0.4 {
		conf = 0.4
	}
	return conf
}

// detection separates table-backed additives from codes the table does not
// cover.
type detection struct {
	known   []refdata.Additive
	unknown []string
}

// detectAdditives scans normalized ingredient entries for additive codes
// and common names, deduplicating by code.
func detectAdditives(table *refdata.AdditiveTable, ingredients []string) detection {
	var d detection
	seen := make(map[string]struct{})

	for _, ing := range ingredients {
		for _, m := range additiveCodePattern.FindAllStringSubmatch(ing, -1) {
			code := "E" + strings.ToUpper(m[1])
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			if entry := table.ByCode(code); entry != nil {
				d.known = append(d.known, *entry)
			} else {
				d.unknown = append(d.unknown, code)
			}
		}
	}

	// Common-name matches count only when the code was not already seen.
	for _, name := range table.Names() {
		entry := table.ByName(name)
		if _, dup := seen[strings.ToUpper(entry.Code)]; dup {
			continue
		}
		for _, ing := range ingredients {
			if strings.Contains(ing, name) {
				seen[strings.ToUpper(entry.Code)] = struct{}{}
				d.known = append(d.known, *entry)
				break
			}
		}
	}

	sort.Slice(d.known, func(i, j int) bool { return d.known[i].Code < d.known[j].Code })
	sort.Strings(d.unknown)
	return d
}
