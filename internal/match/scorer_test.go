package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_Identity(t *testing.T) {
	for _, s := range []string{"a", "Jane Doe", "jane@x.com", "1050 W Main St"} {
		assert.Equal(t, 1.0, Similarity(s, s), "Similarity(%q, %q)", s, s)
	}
}

func TestSimilarity_EmptyInputs(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("jane", ""))
	assert.Equal(t, 0.0, Similarity("", "jane"))
}

func TestSimilarity_Symmetry(t *testing.T) {
	pairs := [][2]string{
		{"Jane Doe", "Jane D."},
		{"Acme Fitness", "ACME Fitness LLC"},
		{"555-1234", "555-9999"},
		{"abcd", "bcde"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]),
			"Similarity(%q, %q) should be symmetric", p[0], p[1])
	}
}

func TestSimilarity_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("JANE DOE", "jane doe"))
	assert.Equal(t, 1.0, Similarity("Jane@X.com", "jane@x.com"))
}

func TestSimilarity_KnownRatio(t *testing.T) {
	// Longest block "bcd" covers 3 of 8 total characters: 2*3/8.
	assert.InDelta(t, 0.75, Similarity("abcd", "bcde"), 1e-9)
}

func TestSimilarity_DisjointStrings(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
}

func TestSimilarity_DegradesWithEdits(t *testing.T) {
	base := "jane doe"
	closer := Similarity(base, "jane doe.")
	farther := Similarity(base, "jan doh!!")
	assert.Greater(t, closer, farther)
	assert.Greater(t, Similarity(base, base), closer)
}

func TestSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "aaaa"},
		{"mississippi", "missouri"},
		{"x", "y"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}
