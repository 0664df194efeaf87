// Package category suggests known category names for free-form input.
package category

import (
	"slices"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/finai-dev/finai/internal/model"
)

// maxRatio is the largest edit distance, relative to the longer string, that
// still counts as a likely typo.
const maxRatio = 0.4

// Other is the category for imported rows nothing matched.
const Other = "other"

// Known collects the distinct non-empty categories used by txns and goals,
// sorted. The goal wildcard is left out.
func Known(txns []model.Transaction, goals []model.Goal) []string {
	seen := map[string]bool{}
	var out []string
	add := func(c string) {
		c = strings.TrimSpace(c)
		if c == "" || c == model.CategoryAll || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, t := range txns {
		add(t.Category)
	}
	for _, g := range goals {
		add(g.Category)
	}
	slices.Sort(out)
	return out
}

// Suggest returns the known category closest to input when input is not
// itself known and the closest one is near enough to be a typo.
func Suggest(input string, known []string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	best, bestRatio := "", 1.0
	for _, k := range known {
		if strings.EqualFold(k, input) {
			return "", false
		}
		r := ratio(strings.ToLower(input), strings.ToLower(k))
		if r < bestRatio {
			best, bestRatio = k, r
		}
	}
	if bestRatio >= maxRatio {
		return "", false
	}
	return best, true
}

// Guess picks a category for a bank description by matching its words
// against known. It returns Other when no word is close.
func Guess(description string, known []string) string {
	words := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	best, bestRatio := Other, maxRatio
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		for _, k := range known {
			r := ratio(w, strings.ToLower(k))
			if r < bestRatio {
				best, bestRatio = k, r
			}
		}
	}
	return best
}

func ratio(a, b string) float64 {
	n := max(len(a), len(b))
	if n == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(n)
}
