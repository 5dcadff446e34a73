// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup orchestrates a full deduplication run: raw result
// batches in, one canonical record per publication out. The pipeline is
// pure computation; it performs no I/O and returns no errors. Malformed
// inputs (missing titles, absent years, unparseable identifiers) are
// merged under the same rules, contributing nothing where they are
// empty.
// Implements: prd004-merge (R5);
//
//	docs/ARCHITECTURE § Pipeline.
package dedup

import (
	"github.com/pdiddy/bibmerge/internal/cluster"
	"github.com/pdiddy/bibmerge/internal/merge"
	"github.com/pdiddy/bibmerge/pkg/types"
)

// Pipeline runs clustering and merging over source batches. The zero
// value uses default thresholds and priority.
type Pipeline struct {
	Match types.MatchConfig
	Merge types.MergeConfig
}

// Output holds the canonical records of one run plus counters.
type Output struct {
	Records []types.CanonicalRecord

	// RawCount is the number of raw results ingested.
	RawCount int

	// DupsRemoved is RawCount minus the number of canonical records.
	DupsRemoved int
}

// Run flattens the batches, clusters every raw result in a fresh index,
// and merges each cluster. No state survives between runs: running twice
// on the same input yields identical records and provenance. Canonical
// records are ordered by the arrival position of each cluster's
// earliest-inserted record, so output order is stable across runs with
// identical input.
func (p Pipeline) Run(batches [][]types.RawResult) Output {
	idx := cluster.NewIndex(p.Match)
	for _, batch := range batches {
		for _, rec := range batch {
			idx.Insert(rec)
		}
	}

	merger := merge.NewMerger(p.Merge)
	clusters := idx.Clusters()

	out := Output{
		Records:  make([]types.CanonicalRecord, 0, len(clusters)),
		RawCount: idx.Len(),
	}
	for _, c := range clusters {
		members := make([]types.RawResult, len(c.Members))
		for i, m := range c.Members {
			members[i] = idx.Record(m)
		}
		out.Records = append(out.Records, merger.Merge(members))
	}
	out.DupsRemoved = out.RawCount - len(out.Records)
	return out
}
