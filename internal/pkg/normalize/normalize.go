// Package normalize provides the single normalization step every classifier
// consumes. Ingredient labels arrive as free text in mixed case, with
// diacritics ("blé complet", "huile de tournesol") and solvent fillers that
// carry no signal for scoring.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// solventStopList holds ingredients stripped from lists before matching.
// Water is the universal solvent and appears in nearly every product.
var solventStopList = map[string]struct{}{
	"water": {},
	"aqua":  {},
	"eau":   {},
}

// Term normalizes a single free-text term for matching:
// unicode-normalized, diacritics removed, lowercased, whitespace collapsed.
func Term(text string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)), // Remove diacritics
		norm.NFC,
	)
	result, _, _ := transform.String(t, text)

	var b strings.Builder
	b.Grow(len(result))
	lastSpace := true
	for _, r := range result {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = false
			}
			lastSpace = true
			continue
		}
		b.WriteRune(unicode.ToLower(r))
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}

// List normalizes an ingredient list: each entry normalized via Term, empty
// entries and solvent stop-list entries dropped. Order is preserved for
// display purposes even though matching is order-independent.
func List(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		n := Term(item)
		if n == "" {
			continue
		}
		if _, stop := solventStopList[n]; stop {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Tokens splits an already-normalized term into word tokens.
func Tokens(term string) []string {
	return strings.FieldsFunc(term, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
