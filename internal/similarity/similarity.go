// Package similarity scores how alike two short free-text strings are on a
// 0-100 scale. Scores are symmetric, deterministic and insensitive to case,
// accents in composed/decomposed form, and punctuation.
package similarity

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case, applies NFKC and replaces every run of characters
// that are not letters or digits with a single space.
func Normalize(s string) string {
	s = cases.Fold().String(norm.NFKC.String(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

// Ratio returns the similarity of a and b as a whole, based on the length
// of their longest common subsequence. Identical non-empty strings score
// 100; if either string is empty after normalisation the score is 0.
func Ratio(a, b string) int {
	return ratio([]rune(Normalize(a)), []rune(Normalize(b)))
}

// PartialRatio returns the best Ratio between the shorter string and any
// equally long window of the longer one, so a short string contained in a
// longer one scores 100.
func PartialRatio(a, b string) int {
	ra, rb := []rune(Normalize(a)), []rune(Normalize(b))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	best := 0
	for start := 0; start+len(ra) <= len(rb); start++ {
		if r := ratio(ra, rb[start:start+len(ra)]); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSetRatio compares the sets of words in a and b. Word order and
// repeated words do not matter, and a string whose words are a subset of
// the other's scores 100.
func TokenSetRatio(a, b string) int {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for w := range ta {
		if _, ok := tb[w]; ok {
			common = append(common, w)
		} else {
			onlyA = append(onlyA, w)
		}
	}
	for w := range tb {
		if _, ok := ta[w]; !ok {
			onlyB = append(onlyB, w)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	rBase, rA, rB := []rune(base), []rune(withA), []rune(withB)
	return max(ratio(rBase, rA), ratio(rBase, rB), ratio(rA, rB))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(s)) {
		set[w] = struct{}{}
	}
	return set
}

// ratio is 2*LCS/(len(a)+len(b)) scaled to 0-100 and rounded.
func ratio(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	l := lcs(a, b)
	total := len(a) + len(b)
	return (200*l + total/2) / total
}

// lcs returns the length of the longest common subsequence of a and b
// using two rolling rows.
func lcs(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
