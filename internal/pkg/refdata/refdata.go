// Package refdata holds the rule tables the classifiers score against.
// Tables ship embedded in the binary, are validated once at startup and are
// never mutated afterwards; components receive them by injection so tests
// can swap in fixtures.
package refdata

import (
	"encoding/json"
	_ "embed"
	"fmt"
	"math"
	"strings"

	"ecoscore/internal/pkg/normalize"
)

var (
	//go:embed tables/additives.json
	additivesJSON []byte

	//go:embed tables/processing.json
	processingJSON []byte

	//go:embed tables/nutrition_grade.json
	nutritionJSON []byte

	//go:embed tables/glycemic.json
	glycemicJSON []byte

	//go:embed tables/chemical.json
	chemicalJSON []byte
)

// RiskLevel is the per-additive and aggregate additive risk scale.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Rank orders risk levels so the maximum can be taken across additives.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return 0
	}
}

func (r RiskLevel) valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// Additive is one reference-table entry for a food additive.
type Additive struct {
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Risk     RiskLevel `json:"risk"`
	Concerns []string  `json:"concerns"`
}

// AdditiveTable indexes additives by E-number code and by common name.
type AdditiveTable struct {
	Version string     `json:"version"`
	Entries []Additive `json:"entries"`

	byCode map[string]*Additive
	byName map[string]*Additive
}

// ByCode looks up an additive by its E-number, case-insensitively.
func (t *AdditiveTable) ByCode(code string) *Additive {
	return t.byCode[strings.ToUpper(strings.TrimSpace(code))]
}

// ByName looks up an additive by its normalized common name.
func (t *AdditiveTable) ByName(name string) *Additive {
	return t.byName[name]
}

// Names returns the normalized common names of all entries.
func (t *AdditiveTable) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	return names
}

func (t *AdditiveTable) index() error {
	if len(t.Entries) == 0 {
		return fmt.Errorf("additive table %q is empty", t.Version)
	}
	t.byCode = make(map[string]*Additive, len(t.Entries))
	t.byName = make(map[string]*Additive, len(t.Entries))
	for i := range t.Entries {
		e := &t.Entries[i]
		if !e.Risk.valid() {
			return fmt.Errorf("additive %s: invalid risk level %q", e.Code, e.Risk)
		}
		t.byCode[strings.ToUpper(e.Code)] = e
		t.byName[normalize.Term(e.Name)] = e
	}
	return nil
}

// ProcessingTable holds the term lists driving NOVA-style classification.
// All terms are stored normalized.
type ProcessingTable struct {
	Version           string   `json:"version"`
	Industrial        []string `json:"industrial_ingredients"`
	ProcessIndicators []string `json:"process_indicators"`
	UltraProcessed    []string `json:"ultra_processed_terms"`
}

func (t *ProcessingTable) normalizeTerms() error {
	if len(t.Industrial) == 0 || len(t.UltraProcessed) == 0 {
		return fmt.Errorf("processing table %q: missing term lists", t.Version)
	}
	t.Industrial = normalize.List(t.Industrial)
	t.ProcessIndicators = normalize.List(t.ProcessIndicators)
	t.UltraProcessed = normalize.List(t.UltraProcessed)
	return nil
}

// PointBand awards Points when a value exceeds Gt; the highest matching
// band wins.
type PointBand struct {
	Gt     float64 `json:"gt"`
	Points int     `json:"points"`
}

// GradeBand maps a score upper bound (inclusive) to a letter grade.
type GradeBand struct {
	Max   float64 `json:"max"`
	Grade string  `json:"grade"`
}

// NutritionTable is the official point table set for nutrition grading.
// Threshold slices award one point per threshold strictly exceeded.
type NutritionTable struct {
	Version  string `json:"version"`
	Negative struct {
		EnergyKJ     []float64 `json:"energy_kj"`
		SaturatedFat []float64 `json:"saturated_fat_g"`
		Sugars       []float64 `json:"sugars_g"`
		SodiumMg     []float64 `json:"sodium_mg"`
	} `json:"negative"`
	NegativeBeverage struct {
		EnergyKJ []float64 `json:"energy_kj"`
		Sugars   []float64 `json:"sugars_g"`
	} `json:"negative_beverage"`
	Positive struct {
		FruitVegBands []PointBand `json:"fruit_veg_bands"`
		Fiber         []float64   `json:"fiber_g"`
		Protein       []float64   `json:"protein_g"`
	} `json:"positive"`
	GradesSolid       []GradeBand        `json:"grades_solid"`
	GradesBeverage    []GradeBand        `json:"grades_beverage"`
	ConfidenceWeights map[string]float64 `json:"confidence_weights"`
	MinConfidence     float64            `json:"min_confidence"`
}

func (t *NutritionTable) validate() error {
	for name, ths := range map[string][]float64{
		"energy_kj":       t.Negative.EnergyKJ,
		"saturated_fat_g": t.Negative.SaturatedFat,
		"sugars_g":        t.Negative.Sugars,
		"sodium_mg":       t.Negative.SodiumMg,
		"bev energy_kj":   t.NegativeBeverage.EnergyKJ,
		"bev sugars_g":    t.NegativeBeverage.Sugars,
		"fiber_g":         t.Positive.Fiber,
		"protein_g":       t.Positive.Protein,
	} {
		if len(ths) == 0 {
			return fmt.Errorf("nutrition table: %s thresholds missing", name)
		}
		for i := 1; i < len(ths); i++ {
			if ths[i] <= ths[i-1] {
				return fmt.Errorf("nutrition table: %s thresholds not ascending", name)
			}
		}
	}
	if len(t.GradesSolid) == 0 || len(t.GradesBeverage) == 0 {
		return fmt.Errorf("nutrition table: grade bands missing")
	}
	var sum float64
	for _, w := range t.ConfidenceWeights {
		sum += w
	}
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("nutrition table: confidence weights sum to %.3f, want 1.0", sum)
	}
	if t.MinConfidence <= 0 || t.MinConfidence >= 1 {
		return fmt.Errorf("nutrition table: min_confidence %.2f out of range", t.MinConfidence)
	}
	return nil
}

// Heuristic is a keyword-driven fallback glycemic estimate used when no
// reference entry matches an ingredient.
type Heuristic struct {
	Label      string   `json:"label"`
	Keywords   []string `json:"keywords"`
	Index      float64  `json:"index"`
	Confidence float64  `json:"confidence"`
}

// ModifierBand applies Factor while a value is at most Max; a nil Max makes
// the band open-ended.
type ModifierBand struct {
	Max    *float64 `json:"max,omitempty"`
	Factor float64  `json:"factor"`
}

// PenaltyBand maps a glycemic index upper bound to a scoring penalty; a nil
// Max makes the band open-ended.
type PenaltyBand struct {
	Max     *float64 `json:"max,omitempty"`
	Penalty float64  `json:"penalty"`
}

// GlycemicTable is the ingredient glycemic-index reference set plus its
// modifier and penalty bands.
type GlycemicTable struct {
	Version           string             `json:"version"`
	Index             map[string]float64 `json:"index"`
	Heuristics        []Heuristic        `json:"heuristics"`
	FiberBands        []ModifierBand     `json:"fiber_bands"`
	FatBands          []ModifierBand     `json:"fat_bands"`
	ProteinBands      []ModifierBand     `json:"protein_bands"`
	ProcessingFactors map[string]float64 `json:"processing_factors"`
	PenaltyBands      []PenaltyBand      `json:"penalty_bands"`
}

func (t *GlycemicTable) validate() error {
	if len(t.Index) == 0 {
		return fmt.Errorf("glycemic table %q: empty index", t.Version)
	}
	normalized := make(map[string]float64, len(t.Index))
	for name, gi := range t.Index {
		if gi < 0 || gi > 100 {
			return fmt.Errorf("glycemic table: %q index %.1f out of [0,100]", name, gi)
		}
		normalized[normalize.Term(name)] = gi
	}
	t.Index = normalized

	for i := range t.Heuristics {
		h := &t.Heuristics[i]
		if h.Confidence <= 0 || h.Confidence >= 1 {
			return fmt.Errorf("glycemic table: heuristic %q confidence out of range", h.Label)
		}
		h.Keywords = normalize.List(h.Keywords)
	}
	for name, bands := range map[string][]ModifierBand{
		"fiber": t.FiberBands, "fat": t.FatBands, "protein": t.ProteinBands,
	} {
		if len(bands) == 0 {
			return fmt.Errorf("glycemic table: %s bands missing", name)
		}
		if bands[len(bands)-1].Max != nil {
			return fmt.Errorf("glycemic table: %s bands must end open", name)
		}
		for _, b := range bands {
			if b.Factor <= 0 {
				return fmt.Errorf("glycemic table: %s band factor must be positive", name)
			}
		}
	}
	for _, key := range []string{"minimal", "processed", "ultra"} {
		if _, ok := t.ProcessingFactors[key]; !ok {
			return fmt.Errorf("glycemic table: processing factor %q missing", key)
		}
	}
	if len(t.PenaltyBands) == 0 || t.PenaltyBands[len(t.PenaltyBands)-1].Max != nil {
		return fmt.Errorf("glycemic table: penalty bands must end open")
	}
	return nil
}

// HarmfulIngredient carries the attributes the chemical risk scorer
// converts into per-axis penalties.
type HarmfulIngredient struct {
	Name             string `json:"name"`
	Toxicity         int    `json:"toxicity"`   // 0-3
	Irritation       int    `json:"irritation"` // 0-3
	Allergen         bool   `json:"allergen"`
	Carcinogen       bool   `json:"carcinogen"`
	NonBiodegradable bool   `json:"non_biodegradable"`
}

// EcoIngredient awards bonuses for benign formulations.
type EcoIngredient struct {
	Name          string `json:"name"`
	Biodegradable bool   `json:"biodegradable"`
	PlantBased    bool   `json:"plant_based"`
	Natural       bool   `json:"natural"`
}

// Certification is a recognized eco-label and its bonus.
type Certification struct {
	Name  string  `json:"name"`
	Bonus float64 `json:"bonus"`
}

// ChemicalTable is the household-chemical risk/bonus reference set.
type ChemicalTable struct {
	Version        string              `json:"version"`
	Harmful        []HarmfulIngredient `json:"harmful"`
	Eco            []EcoIngredient     `json:"eco"`
	Certifications []Certification     `json:"certifications"`
}

func (t *ChemicalTable) validate() error {
	if len(t.Harmful) == 0 || len(t.Eco) == 0 {
		return fmt.Errorf("chemical table %q: missing entries", t.Version)
	}
	for i := range t.Harmful {
		h := &t.Harmful[i]
		if h.Toxicity < 0 || h.Toxicity > 3 || h.Irritation < 0 || h.Irritation > 3 {
			return fmt.Errorf("chemical table: %q tier out of range", h.Name)
		}
		h.Name = normalize.Term(h.Name)
	}
	for i := range t.Eco {
		t.Eco[i].Name = normalize.Term(t.Eco[i].Name)
	}
	for i := range t.Certifications {
		c := &t.Certifications[i]
		if c.Bonus <= 0 {
			return fmt.Errorf("chemical table: certification %q bonus must be positive", c.Name)
		}
		c.Name = normalize.Term(c.Name)
	}
	return nil
}

// Tables bundles every reference table loaded at startup.
type Tables struct {
	Additives  AdditiveTable
	Processing ProcessingTable
	Nutrition  NutritionTable
	Glycemic   GlycemicTable
	Chemical   ChemicalTable
}

// Load parses and validates the embedded tables. A malformed table is a
// deployment bug, so callers should treat an error as fatal at startup.
func Load() (*Tables, error) {
	t := &Tables{}
	for name, spec := range map[string]struct {
		raw []byte
		dst any
	}{
		"additives":  {additivesJSON, &t.Additives},
		"processing": {processingJSON, &t.Processing},
		"nutrition":  {nutritionJSON, &t.Nutrition},
		"glycemic":   {glycemicJSON, &t.Glycemic},
		"chemical":   {chemicalJSON, &t.Chemical},
	} {
		if err := json.Unmarshal(spec.raw, spec.dst); err != nil {
			return nil, fmt.Errorf("refdata: parse %s: %w", name, err)
		}
	}
	for name, post := range map[string]func() error{
		"additives":  t.Additives.index,
		"processing": t.Processing.normalizeTerms,
		"nutrition":  t.Nutrition.validate,
		"glycemic":   t.Glycemic.validate,
		"chemical":   t.Chemical.validate,
	} {
		if err := post(); err != nil {
			return nil, fmt.Errorf("refdata: validate %s: %w", name, err)
		}
	}
	return t, nil
}
