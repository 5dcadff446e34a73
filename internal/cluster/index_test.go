// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibmerge/pkg/types"
)

// partition returns the clustering as a canonical set-of-sets string so
// two partitions can be compared regardless of cluster or member order.
func partition(x *Index) string {
	var groups []string
	for _, c := range x.Clusters() {
		var ids []string
		for _, m := range c.Members {
			rec := x.Record(m)
			ids = append(ids, rec.SourceID+"/"+rec.SourceLocalID)
		}
		sort.Strings(ids)
		groups = append(groups, fmt.Sprint(ids))
	}
	sort.Strings(groups)
	return fmt.Sprint(groups)
}

func insertAll(recs []types.RawResult) *Index {
	x := NewIndex(types.DefaultMatchConfig())
	for _, r := range recs {
		x.Insert(r)
	}
	return x
}

// permutations generates all orderings of recs. Test inputs stay small
// enough (≤ 6 records) for the factorial to be trivial.
func permutations(recs []types.RawResult) [][]types.RawResult {
	if len(recs) <= 1 {
		return [][]types.RawResult{recs}
	}
	var out [][]types.RawResult
	for i := range recs {
		rest := make([]types.RawResult, 0, len(recs)-1)
		rest = append(rest, recs[:i]...)
		rest = append(rest, recs[i+1:]...)
		for _, p := range permutations(rest) {
			perm := append([]types.RawResult{recs[i]}, p...)
			out = append(out, perm)
		}
	}
	return out
}

func TestInsertSingletons(t *testing.T) {
	x := insertAll([]types.RawResult{
		{SourceID: "arxiv", SourceLocalID: "a", Title: "quantum error correction", Authors: []string{"Shor, P."}, Year: 1995},
		{SourceID: "arxiv", SourceLocalID: "b", Title: "stellar nucleosynthesis rates", Authors: []string{"Burbidge, G."}, Year: 1957},
	})
	assert.Len(t, x.Clusters(), 2)
}

func TestInsertAttachesByIdentifier(t *testing.T) {
	x := insertAll([]types.RawResult{
		{SourceID: "crossref", SourceLocalID: "10.1000/x", Identifiers: map[types.IdentifierKind]string{types.KindDOI: "10.1000/x"}},
		{SourceID: "openalex", SourceLocalID: "W1", Identifiers: map[types.IdentifierKind]string{types.KindDOI: "https://doi.org/10.1000/X"}},
	})
	clusters := x.Clusters()
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, 2)
}

func TestInsertArxivVersionsCluster(t *testing.T) {
	x := insertAll([]types.RawResult{
		{SourceID: "arxiv", SourceLocalID: "2401.12345", Identifiers: map[types.IdentifierKind]string{types.KindArxiv: "2401.12345"}},
		{SourceID: "semanticscholar", SourceLocalID: "s1", Identifiers: map[types.IdentifierKind]string{types.KindArxiv: "2401.12345v2"}},
	})
	assert.Len(t, x.Clusters(), 1)
}

func TestIdentifierTransitivity(t *testing.T) {
	// A shares a DOI with B; B shares an arXiv ID with C. A and C share
	// nothing directly but must land in one cluster.
	recs := []types.RawResult{
		{SourceID: "crossref", SourceLocalID: "a", Identifiers: map[types.IdentifierKind]string{types.KindDOI: "10.1000/x"}},
		{SourceID: "openalex", SourceLocalID: "b", Identifiers: map[types.IdentifierKind]string{
			types.KindDOI:   "10.1000/x",
			types.KindArxiv: "2401.00001",
		}},
		{SourceID: "arxiv", SourceLocalID: "c", Identifiers: map[types.IdentifierKind]string{types.KindArxiv: "2401.00001v3"}},
	}

	for _, perm := range permutations(recs) {
		x := insertAll(perm)
		clusters := x.Clusters()
		require.Len(t, clusters, 1, "all three records must cluster together in every insertion order")
		assert.Len(t, clusters[0].Members, 3)
	}
}

func TestBridgingRecordMergesClusters(t *testing.T) {
	// Two singleton clusters with unrelated identifiers, then a record
	// carrying both identifiers arrives and unions them.
	x := insertAll([]types.RawResult{
		{SourceID: "crossref", SourceLocalID: "a", Identifiers: map[types.IdentifierKind]string{types.KindDOI: "10.1000/x"}},
		{SourceID: "arxiv", SourceLocalID: "b", Identifiers: map[types.IdentifierKind]string{types.KindArxiv: "2401.00001"}},
		{SourceID: "openalex", SourceLocalID: "bridge", Identifiers: map[types.IdentifierKind]string{
			types.KindDOI:   "10.1000/x",
			types.KindArxiv: "2401.00001",
		}},
	})
	clusters := x.Clusters()
	require.Len(t, clusters, 1)
	assert.Equal(t, []int{0, 1, 2}, clusters[0].Members, "merged cluster keeps arrival order")
}

func TestFuzzyAttachUsesBuckets(t *testing.T) {
	recs := []types.RawResult{
		{SourceID: "crossref", SourceLocalID: "a", Title: "universal density profile from hierarchical clustering", Authors: []string{"Navarro, J."}, Year: 1997},
		{SourceID: "arxiv", SourceLocalID: "b", Title: "a universal density profile from hierarchical clustering", Authors: []string{"J. Navarro"}, Year: 1996},
		// Same title, different first author: stays separate.
		{SourceID: "openalex", SourceLocalID: "c", Title: "universal density profile from hierarchical clustering", Authors: []string{"Frenk, C."}, Year: 1997},
	}
	x := insertAll(recs)
	assert.Len(t, x.Clusters(), 2)
}

func TestFuzzyYearBoundarySpansBuckets(t *testing.T) {
	// Years 1996 and 1997 land in different buckets; the tolerance probe
	// must still find the neighbor.
	x := insertAll([]types.RawResult{
		{SourceID: "crossref", SourceLocalID: "a", Title: "universal density profile from hierarchical clustering", Authors: []string{"Navarro, J."}, Year: 1996},
		{SourceID: "arxiv", SourceLocalID: "b", Title: "universal density profile from hierarchical clustering", Authors: []string{"Navarro, J."}, Year: 1997},
	})
	assert.Len(t, x.Clusters(), 1)
}

func TestFuzzyUnknownYearMatchesAnyYear(t *testing.T) {
	x := insertAll([]types.RawResult{
		{SourceID: "crossref", SourceLocalID: "a", Title: "universal density profile from hierarchical clustering", Authors: []string{"Navarro, J."}, Year: 1997},
		{SourceID: "dblp", SourceLocalID: "b", Title: "universal density profile from hierarchical clustering", Authors: []string{"Navarro, J."}},
	})
	assert.Len(t, x.Clusters(), 1)
}

func TestOrderIndependence(t *testing.T) {
	// A mixed batch: one identifier-linked pair, one fuzzy-linked chain,
	// and one unrelated singleton. Every permutation must produce the
	// same partition.
	recs := []types.RawResult{
		{SourceID: "crossref", SourceLocalID: "p1", Title: "a universal density profile of cold dark matter halos",
			Authors: []string{"Navarro, J."}, Year: 1997,
			Identifiers: map[types.IdentifierKind]string{types.KindDOI: "10.1000/ndm"}},
		{SourceID: "openalex", SourceLocalID: "p2", Title: "totally unrelated wording here",
			Authors:     []string{"Navarro, J."}, Year: 1997,
			Identifiers: map[types.IdentifierKind]string{types.KindDOI: "https://doi.org/10.1000/NDM"}},
		{SourceID: "arxiv", SourceLocalID: "p3", Title: "universal density profile of cold dark matter halos (preprint)",
			Authors: []string{"Julio Navarro"}, Year: 1996},
		{SourceID: "dblp", SourceLocalID: "p4", Title: "measurement of neutrino oscillation parameters",
			Authors: []string{"Fukuda, Y."}, Year: 1998},
		{SourceID: "pubmed", SourceLocalID: "p5", Title: "universal density profile of cold dark matter halos",
			Authors: []string{"Navarro, Julio F."}},
	}

	want := partition(insertAll(recs))
	for i, perm := range permutations(recs) {
		got := partition(insertAll(perm))
		require.Equal(t, want, got, "permutation %d produced a different partition", i)
	}
}

func TestClustersNeverSplit(t *testing.T) {
	x := NewIndex(types.DefaultMatchConfig())
	x.Insert(types.RawResult{SourceID: "crossref", SourceLocalID: "a",
		Identifiers: map[types.IdentifierKind]string{types.KindDOI: "10.1000/x"}})
	x.Insert(types.RawResult{SourceID: "openalex", SourceLocalID: "b",
		Identifiers: map[types.IdentifierKind]string{types.KindDOI: "10.1000/x"}})
	require.Len(t, x.Clusters(), 1)

	// Later inserts can only grow or merge existing clusters.
	for i := 0; i < 5; i++ {
		x.Insert(types.RawResult{SourceID: "dblp", SourceLocalID: fmt.Sprintf("u%d", i),
			Title: fmt.Sprintf("unrelated topic number %d entirely", i), Authors: []string{fmt.Sprintf("Author%d, A.", i)}})
	}
	clusters := x.Clusters()
	require.Len(t, clusters, 6)
	assert.Len(t, clusters[0].Members, 2)
}

func TestFuzzyTieBreakPrefersEarliestCluster(t *testing.T) {
	// Two pre-existing clusters both fuzzy-match the incoming record and
	// are not otherwise linked. The record must attach to the cluster
	// whose representative was inserted first; no warning is raised.
	loose := types.MatchConfig{TitleSimilarityThreshold: 0.5, YearTolerance: 1}
	x := NewIndex(loose)
	x.Insert(types.RawResult{SourceID: "crossref", SourceLocalID: "a",
		Title: "galaxy rotation curves alpha beta", Authors: []string{"Rubin, V."}, Year: 1980})
	x.Insert(types.RawResult{SourceID: "openalex", SourceLocalID: "b",
		Title: "galaxy rotation curves gamma delta", Authors: []string{"Rubin, V."}, Year: 1980})
	require.Len(t, x.Clusters(), 2)

	x.Insert(types.RawResult{SourceID: "arxiv", SourceLocalID: "c",
		Title: "galaxy rotation curves", Authors: []string{"Rubin, V."}, Year: 1980})

	clusters := x.Clusters()
	require.Len(t, clusters, 2)
	assert.Equal(t, []int{0, 2}, clusters[0].Members)
	assert.Equal(t, []int{1}, clusters[1].Members)
}
