// Package textsim provides string similarity ratios on a 0..1 scale.
package textsim

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Levenshtein scores strings by edit distance relative to their length.
type Levenshtein struct{}

// Ratio is 1 - distance/maxLen over runes. Two empty strings score 1.
func (Levenshtein) Ratio(a, b string) float64 {
	return ratio(a, b)
}

// TokenSort compares the strings after sorting their whitespace-separated
// tokens, so word order does not matter.
func (Levenshtein) TokenSort(a, b string) float64 {
	return ratio(sortedTokens(a), sortedTokens(b))
}

// Partial slides the shorter string across the longer one and returns the
// best window ratio, so a string contained in another scores 1.
func (Levenshtein) Partial(a, b string) float64 {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 1
		}
		return 0
	}

	needle := string(shorter)
	best := 0.0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		score := ratio(needle, string(longer[start:start+len(shorter)]))
		if score > best {
			best = score
			if best == 1 {
				break
			}
		}
	}
	return best
}

func ratio(a, b string) float64 {
	lenA := len([]rune(a))
	lenB := len([]rune(b))
	maxLen := max(lenA, lenB)
	if maxLen == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	score := 1 - float64(distance)/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}

func sortedTokens(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
