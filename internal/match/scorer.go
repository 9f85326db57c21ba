// Package match resolves a loosely structured customer identity against
// the open service requests fetched from the work-order system.
//
// String similarity uses gestalt pattern matching (Ratcliff/Obershelp):
// the ratio of characters covered by recursively chosen longest matching
// blocks to the combined input length. Exact scores therefore differ from
// edit-distance metrics, but the properties the matcher relies on hold:
// identical strings score 1.0, disjoint strings score 0.0, and the score
// degrades monotonically with edits.
package match

import "strings"

// Similarity returns a normalized [0,1] similarity between two strings,
// case-insensitive. Either input being empty yields 0: missing data earns
// no credit, which is distinct from a real mismatch being penalized.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ar := []rune(strings.ToLower(a))
	br := []rune(strings.ToLower(b))
	matched := matchingTotal(ar, br)
	return 2 * float64(matched) / float64(len(ar)+len(br))
}

// matchingTotal counts the characters covered by the longest matching
// block and, recursively, the longest blocks on either side of it.
func matchingTotal(a, b []rune) int {
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingTotal(a[:i], b[:j]) +
		matchingTotal(a[i+size:], b[j+size:])
}

// longestMatch finds the longest common contiguous block between a and b,
// preferring the earliest occurrence on ties.
func longestMatch(a, b []rune) (bestI, bestJ, bestSize int) {
	// runLen[j] is the length of the common run ending at a[i-1], b[j].
	runLen := make(map[int]int, len(b))
	for i := range a {
		next := make(map[int]int, len(b))
		for j := range b {
			if a[i] != b[j] {
				continue
			}
			k := runLen[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestI, bestJ, bestSize = i-k+1, j-k+1, k
			}
		}
		runLen = next
	}
	return bestI, bestJ, bestSize
}
