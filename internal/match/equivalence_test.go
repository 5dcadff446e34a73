// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/bibmerge/pkg/types"
)

func defaultTester() Tester {
	return NewTester(types.DefaultMatchConfig())
}

func TestSameByIdentifierAcrossSources(t *testing.T) {
	a := types.RawResult{
		SourceID: "crossref", SourceLocalID: "10.1000/x",
		Title:       "Completely different title",
		Identifiers: map[types.IdentifierKind]string{types.KindDOI: "https://doi.org/10.1000/X"},
	}
	b := types.RawResult{
		SourceID: "openalex", SourceLocalID: "W123",
		Title:       "Another title entirely",
		Identifiers: map[types.IdentifierKind]string{types.KindDOI: "10.1000/x"},
	}
	assert.True(t, defaultTester().Same(a, b), "a DOI match is source-independent and beats dissimilar titles")
}

func TestSameArxivVersionsEqual(t *testing.T) {
	a := types.RawResult{Identifiers: map[types.IdentifierKind]string{types.KindArxiv: "2401.12345"}}
	b := types.RawResult{Identifiers: map[types.IdentifierKind]string{types.KindArxiv: "2401.12345v2"}}
	assert.True(t, defaultTester().Same(a, b))
}

func TestSameDifferentKindsDoNotCross(t *testing.T) {
	// Same string under different kinds is not a shared identifier.
	a := types.RawResult{Identifiers: map[types.IdentifierKind]string{types.KindPMID: "12345"}}
	b := types.RawResult{Identifiers: map[types.IdentifierKind]string{types.KindArxiv: "12345"}}
	assert.False(t, defaultTester().Same(a, b))
}

func TestSameFuzzyThresholdBoundary(t *testing.T) {
	shared := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu nu xi omicron rho tau"

	// 17/20 = 0.85: exactly at the threshold counts as a match.
	at := [2]types.RawResult{
		{Title: shared + " sigma phi", Authors: []string{"Navarro, J."}, Year: 1997},
		{Title: shared + " omega", Authors: []string{"J. Navarro"}, Year: 1997},
	}
	assert.True(t, defaultTester().Same(at[0], at[1]))

	// 21/25 = 0.84: just below the threshold is not a match.
	shared21 := shared + " phi chi psi omega"
	below := [2]types.RawResult{
		{Title: shared21 + " one two", Authors: []string{"Navarro, J."}, Year: 1997},
		{Title: shared21 + " three four", Authors: []string{"J. Navarro"}, Year: 1997},
	}
	assert.False(t, defaultTester().Same(below[0], below[1]))
}

func TestSameYearTolerance(t *testing.T) {
	mk := func(year int) types.RawResult {
		return types.RawResult{
			Title:   "universal density profile from hierarchical clustering",
			Authors: []string{"Navarro, Julio F."},
			Year:    year,
		}
	}
	assert.True(t, defaultTester().Same(mk(1996), mk(1997)), "year difference of 1 is within tolerance")
	assert.False(t, defaultTester().Same(mk(1996), mk(1998)), "year difference of 2 exceeds tolerance")
}

func TestSameMissingYearNeverBlocks(t *testing.T) {
	a := types.RawResult{
		Title:   "universal density profile from hierarchical clustering",
		Authors: []string{"Navarro, J."},
		Year:    1997,
	}
	b := a
	b.Year = 0
	assert.True(t, defaultTester().Same(a, b))
	assert.True(t, defaultTester().Same(b, b))
}

func TestSameAuthorMismatchBlocksFuzzy(t *testing.T) {
	a := types.RawResult{
		Title:   "measurement of the hubble constant from cepheid distances",
		Authors: []string{"Navarro, J."},
		Year:    2001,
	}
	b := types.RawResult{
		Title:   "measurement of the hubble constant from cepheid distances",
		Authors: []string{"Freedman, W."},
		Year:    2001,
	}
	// Identical titles, same year: author equality is still mandatory.
	assert.False(t, defaultTester().Same(a, b))
}

func TestSameNoAuthorsBlocksFuzzy(t *testing.T) {
	a := types.RawResult{Title: "dark matter halos", Year: 1997}
	b := types.RawResult{Title: "dark matter halos", Year: 1997}
	assert.False(t, defaultTester().Same(a, b))
}

func TestSameEmptyTitlesNoMatch(t *testing.T) {
	a := types.RawResult{Authors: []string{"Navarro, J."}}
	b := types.RawResult{Authors: []string{"Navarro, J."}}
	assert.False(t, defaultTester().Same(a, b))
}

func TestSameIsSymmetric(t *testing.T) {
	tester := defaultTester()
	pairs := [][2]types.RawResult{
		{
			{Title: "dark matter halos", Authors: []string{"Navarro, J."}, Year: 1997},
			{Title: "dark matter halos (preprint)", Authors: []string{"J. Navarro"}, Year: 1996},
		},
		{
			{Identifiers: map[types.IdentifierKind]string{types.KindDOI: "10.1000/x"}},
			{Identifiers: map[types.IdentifierKind]string{types.KindDOI: "doi:10.1000/x"}},
		},
		{
			{Title: "alpha beta"},
			{Title: "gamma delta"},
		},
	}
	for _, p := range pairs {
		assert.Equal(t, tester.Same(p[0], p[1]), tester.Same(p[1], p[0]))
	}
}

func TestNewTesterCustomThresholds(t *testing.T) {
	loose := NewTester(types.MatchConfig{TitleSimilarityThreshold: 0.5, YearTolerance: 5})
	a := types.RawResult{Title: "dark matter halos", Authors: []string{"Navarro, J."}, Year: 1990}
	b := types.RawResult{Title: "dark matter profiles", Authors: []string{"Navarro, J."}, Year: 1994}
	assert.True(t, loose.Same(a, b))
	assert.False(t, defaultTester().Same(a, b))
}
