package services

import (
	"github.com/adrg/strutil/metrics"
)

// fuzzyLengthWindow is how far a catalog key's length may differ from the
// query length and still be worth scoring. Anything further apart already
// exceeds every accepted distance.
const fuzzyLengthWindow = 3

var levenshtein = metrics.NewLevenshtein()

// EditDistance returns the unit-cost Levenshtein distance between a and b.
func EditDistance(a, b string) int {
	return levenshtein.Distance(a, b)
}

// FuzzyThreshold is the maximum accepted edit distance for a normalized query
// of the given length: 2 for short names, 3 once the name is long enough that
// small typos accumulate.
func FuzzyThreshold(queryLen int) int {
	if queryLen <= 15 {
		return 2
	}
	return 3
}

// WithinFuzzyWindow reports whether a candidate key's length is close enough
// to the query to be a plausible fuzzy match.
func WithinFuzzyWindow(queryLen, keyLen int) bool {
	diff := queryLen - keyLen
	if diff < 0 {
		diff = -diff
	}
	return diff <= fuzzyLengthWindow
}
