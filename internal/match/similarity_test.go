// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleSimilarityIdentical(t *testing.T) {
	got := TitleSimilarity("Dark Matter Halos", "Dark Matter Halos")
	assert.Equal(t, 1.0, got)
}

func TestTitleSimilarityCaseAndPunctuation(t *testing.T) {
	got := TitleSimilarity("Attention Is All You Need!", "attention is all you need")
	assert.Equal(t, 1.0, got)
}

func TestTitleSimilarityStopWordsIgnored(t *testing.T) {
	// "the", "of", "a" contribute nothing to either token set.
	got := TitleSimilarity("The Structure of a Galaxy", "Structure Galaxy")
	assert.Equal(t, 1.0, got)
}

func TestTitleSimilarityDisjoint(t *testing.T) {
	got := TitleSimilarity("quantum chromodynamics", "stellar nucleosynthesis")
	assert.Equal(t, 0.0, got)
}

func TestTitleSimilarityEmpty(t *testing.T) {
	assert.Equal(t, 0.0, TitleSimilarity("", "Dark Matter Halos"))
	assert.Equal(t, 0.0, TitleSimilarity("Dark Matter Halos", ""))
	// Both empty: no information, conservatively dissimilar.
	assert.Equal(t, 0.0, TitleSimilarity("", ""))
	// Titles made entirely of stop words reduce to empty token sets.
	assert.Equal(t, 0.0, TitleSimilarity("of the", "in and for"))
}

func TestTitleSimilarityPartialOverlap(t *testing.T) {
	// Token sets {dark, matter, halos} and {dark, matter, profiles}:
	// intersection 2, union 4.
	got := TitleSimilarity("dark matter halos", "dark matter profiles")
	assert.InDelta(t, 0.5, got, 1e-12)
}

func TestTitleSimilarityExactFraction(t *testing.T) {
	// 17 shared tokens, 2 unique to A, 1 unique to B: 17/20 = 0.85.
	shared := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu nu xi omicron rho tau"
	a := shared + " sigma phi"
	b := shared + " omega"
	got := TitleSimilarity(a, b)
	if math.Abs(got-0.85) > 1e-12 {
		t.Errorf("TitleSimilarity = %v, want 0.85", got)
	}
}

func TestTitleSimilaritySymmetric(t *testing.T) {
	a := "dark matter halos in cosmological simulations"
	b := "universal density profile of dark matter halos"
	assert.Equal(t, TitleSimilarity(a, b), TitleSimilarity(b, a))
}

func TestFirstAuthorSurname(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"last comma first", []string{"Navarro, Julio F."}, "navarro"},
		{"first last", []string{"Julio F. Navarro"}, "navarro"},
		{"single token", []string{"Navarro"}, "navarro"},
		{"case folded", []string{"NAVARRO, J."}, "navarro"},
		{"only first author counts", []string{"Navarro, J.", "Frenk, C."}, "navarro"},
		{"empty list", nil, ""},
		{"blank name", []string{"  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstAuthorSurname(tt.authors))
		})
	}
}

func TestSameFirstAuthor(t *testing.T) {
	assert.True(t, SameFirstAuthor([]string{"Navarro, Julio F."}, []string{"J. Navarro"}))
	assert.False(t, SameFirstAuthor([]string{"Navarro, J."}, []string{"Freedman, W."}))
	// No authors never satisfies author equality, even on both sides.
	assert.False(t, SameFirstAuthor(nil, nil))
	assert.False(t, SameFirstAuthor(nil, []string{"Navarro, J."}))
}

func TestTitleTokensUnicode(t *testing.T) {
	tokens := titleTokens("Über die Entstehung der Galaxien")
	_, ok := tokens["über"]
	assert.True(t, ok, "umlauts should survive tokenization, got %v", tokens)
}

func TestTitleTokensHyphenSplits(t *testing.T) {
	tokens := titleTokens("Pre-training of transformers")
	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, k)
	}
	joined := strings.Join(keys, " ")
	assert.Contains(t, joined, "pre")
	assert.Contains(t, joined, "training")
}
