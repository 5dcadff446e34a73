// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge collapses one cluster of raw results into a single
// canonical record under a configurable source-priority policy.
// Implements: prd004-merge (R1-R4);
//
//	docs/ARCHITECTURE § Merging.
package merge

import (
	"strings"

	"github.com/pdiddy/bibmerge/internal/identifier"
	"github.com/pdiddy/bibmerge/pkg/types"
)

// Merger applies the source-priority merge policy.
type Merger struct {
	priority []string
	rank     map[string]int
}

// NewMerger returns a Merger for the given priority ordering. An empty
// ordering falls back to the default source ranking.
func NewMerger(cfg types.MergeConfig) Merger {
	priority := cfg.Priority
	if len(priority) == 0 {
		priority = types.DefaultMergeConfig().Priority
	}
	rank := make(map[string]int, len(priority))
	for i, s := range priority {
		rank[s] = i
	}
	return Merger{priority: priority, rank: rank}
}

// Merge produces the canonical record for one cluster. Records must be
// in cluster arrival order; that order decides provenance, multi-value
// union order, and the fallback when no priority source contributes a
// scalar field.
func (m Merger) Merge(records []types.RawResult) types.CanonicalRecord {
	var out types.CanonicalRecord

	out.Title = m.pickString(records, func(r types.RawResult) string { return r.Title })
	out.Venue = m.pickString(records, func(r types.RawResult) string { return r.Venue })
	out.Abstract = m.pickString(records, func(r types.RawResult) string { return r.Abstract })
	out.Year = m.pickYear(records)
	out.Authors = m.pickAuthors(records)

	out.Identifiers = unionIdentifiers(records)
	out.ExternalURLs = unionURLs(records, func(r types.RawResult) string { return r.ExternalURL })
	out.PDFURLs = unionURLs(records, func(r types.RawResult) string { return r.PDFURL })

	out.Provenance = make([]types.SourceRef, len(records))
	for i, r := range records {
		out.Provenance[i] = types.SourceRef{SourceID: r.SourceID, SourceLocalID: r.SourceLocalID}
	}
	return out
}

// pickString selects a scalar string field: highest-priority source with
// a non-empty value wins; sources outside the priority list are
// considered last, in cluster arrival order.
func (m Merger) pickString(records []types.RawResult, field func(types.RawResult) string) string {
	if r, ok := m.pick(records, func(r types.RawResult) bool { return field(r) != "" }); ok {
		return field(r)
	}
	return ""
}

func (m Merger) pickYear(records []types.RawResult) int {
	if r, ok := m.pick(records, func(r types.RawResult) bool { return r.Year != 0 }); ok {
		return r.Year
	}
	return 0
}

func (m Merger) pickAuthors(records []types.RawResult) []string {
	if r, ok := m.pick(records, func(r types.RawResult) bool { return len(r.Authors) > 0 }); ok {
		return append([]string(nil), r.Authors...)
	}
	return nil
}

// pick returns the contributing record for one scalar field: the first
// record (in arrival order) of the highest-priority source for which
// nonEmpty holds, falling back to arrival order across records from
// sources not in the priority list.
func (m Merger) pick(records []types.RawResult, nonEmpty func(types.RawResult) bool) (types.RawResult, bool) {
	best := -1
	bestRank := len(m.priority) // one past the last priority slot
	for i, r := range records {
		if !nonEmpty(r) {
			continue
		}
		rank, listed := m.rank[r.SourceID]
		if !listed {
			rank = len(m.priority)
		}
		if rank < bestRank {
			best, bestRank = i, rank
		}
	}
	if best == -1 {
		return types.RawResult{}, false
	}
	return records[best], true
}

// unionIdentifiers collects the normalized identifiers of every record,
// de-duplicated, in first-contribution order.
func unionIdentifiers(records []types.RawResult) []types.Identifier {
	seen := make(map[types.Identifier]bool)
	var out []types.Identifier
	for _, r := range records {
		norm := identifier.Normalize(r.Identifiers)
		for _, kind := range identifierKinds(norm) {
			id := types.Identifier{Kind: kind, Value: norm[kind]}
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// identifierKinds returns the kinds of a normalized mapping in a fixed
// order (known kinds first, then lexicographic) so union output is
// deterministic.
func identifierKinds(norm map[types.IdentifierKind]string) []types.IdentifierKind {
	known := []types.IdentifierKind{types.KindDOI, types.KindArxiv, types.KindBibcode, types.KindPMID}
	var out []types.IdentifierKind
	for _, k := range known {
		if _, ok := norm[k]; ok {
			out = append(out, k)
		}
	}
	var rest []types.IdentifierKind
	for k := range norm {
		if k != types.KindDOI && k != types.KindArxiv && k != types.KindBibcode && k != types.KindPMID {
			rest = append(rest, k)
		}
	}
	for i := 1; i < len(rest); i++ {
		for j := i; j > 0 && rest[j] < rest[j-1]; j-- {
			rest[j], rest[j-1] = rest[j-1], rest[j]
		}
	}
	return append(out, rest...)
}

// unionURLs collects one URL field across the cluster, de-duplicated
// case-insensitively and ignoring a trailing slash. The first-seen
// spelling is kept.
func unionURLs(records []types.RawResult, field func(types.RawResult) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		u := strings.TrimSpace(field(r))
		if u == "" {
			continue
		}
		key := strings.ToLower(strings.TrimRight(u, "/"))
		if !seen[key] {
			seen[key] = true
			out = append(out, u)
		}
	}
	return out
}
