// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"github.com/pdiddy/bibmerge/internal/identifier"
	"github.com/pdiddy/bibmerge/pkg/types"
)

// Tester makes the same-publication decision for a pair of raw results.
// The zero value is not useful; construct with NewTester so the
// configured thresholds apply.
type Tester struct {
	cfg types.MatchConfig
}

// NewTester returns a Tester using the given thresholds. Zero-valued
// fields fall back to the defaults (0.85 similarity, year tolerance 1).
func NewTester(cfg types.MatchConfig) Tester {
	def := types.DefaultMatchConfig()
	if cfg.TitleSimilarityThreshold <= 0 {
		cfg.TitleSimilarityThreshold = def.TitleSimilarityThreshold
	}
	if cfg.YearTolerance < 0 {
		cfg.YearTolerance = def.YearTolerance
	}
	return Tester{cfg: cfg}
}

// Same reports whether a and b denote the same publication. The test is
// symmetric: Same(a, b) == Same(b, a).
//
// The identifier path is checked first: any shared normalized
// (kind, value) pair is a match regardless of source. Only when no
// identifier matches does the fuzzy path run, requiring title similarity
// at or above the threshold, equal first-author surnames, and years
// within tolerance. A missing year on either side does not block the
// fuzzy path; missing identifiers simply cannot fire the identifier path.
func (t Tester) Same(a, b types.RawResult) bool {
	if sharesIdentifier(identifier.Normalize(a.Identifiers), identifier.Normalize(b.Identifiers)) {
		return true
	}
	return t.fuzzyMatch(a, b)
}

// sharesIdentifier reports whether the two normalized mappings share at
// least one (kind, value) pair.
func sharesIdentifier(a, b map[types.IdentifierKind]string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for kind, va := range a {
		if vb, ok := b[kind]; ok && va == vb {
			return true
		}
	}
	return false
}

func (t Tester) fuzzyMatch(a, b types.RawResult) bool {
	if !SameFirstAuthor(a.Authors, b.Authors) {
		return false
	}
	if !t.yearsCompatible(a.Year, b.Year) {
		return false
	}
	return TitleSimilarity(a.Title, b.Title) >= t.cfg.TitleSimilarityThreshold
}

// yearsCompatible applies the year-tolerance condition. A zero year is
// unknown and never blocks the fuzzy path.
func (t Tester) yearsCompatible(a, b int) bool {
	if a == 0 || b == 0 {
		return true
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= t.cfg.YearTolerance
}
