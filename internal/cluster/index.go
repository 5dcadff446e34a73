// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cluster incrementally partitions raw results into equivalence
// classes, one per real-world publication. Clusters only ever grow or
// merge during a run; they are never split, which is what makes the
// final partition independent of insertion order.
// Implements: prd003-matching (R5), prd004-merge (R2.1);
//
//	docs/ARCHITECTURE § Clustering.
package cluster

import (
	"github.com/pdiddy/bibmerge/internal/identifier"
	"github.com/pdiddy/bibmerge/internal/match"
	"github.com/pdiddy/bibmerge/pkg/types"
)

// identKey is one normalized (kind, value) pair used for exact lookup.
type identKey struct {
	kind  types.IdentifierKind
	value string
}

// Cluster is one equivalence class: the indices of its member records in
// arrival order. Records themselves live in the Index arena.
type Cluster struct {
	// Members holds record indices into the Index arena, in arrival order.
	Members []int
}

// Index assigns raw results to clusters as they arrive. It maintains an
// exact index from normalized identifiers to cluster IDs and a fuzzy
// candidate index keyed by first-author surname and year, so insertion
// stays near-linear instead of comparing every pair.
//
// An Index is single-use: it belongs to one pipeline run and carries no
// state across runs. It is not safe for concurrent use; callers join all
// source batches first and insert synchronously.
type Index struct {
	tester match.Tester

	// records is the arena of all inserted results, in arrival order.
	records []types.RawResult

	// normalized caches the normalized identifier mapping per record.
	normalized []map[types.IdentifierKind]string

	// clusterOf maps record index to its current cluster ID.
	clusterOf []int

	// members maps cluster ID to member record indices in arrival
	// order. A merged-away cluster has a nil slice.
	members [][]int

	// parent implements union-find over cluster IDs: parent[c] == c for
	// a live cluster, otherwise it points toward the survivor.
	parent []int

	// byIdent maps each normalized identifier to the cluster holding it.
	byIdent map[identKey]int

	// bySurname buckets cluster IDs by first-author surname and year, so
	// the fuzzy test only runs against a small candidate set. Year 0
	// holds records with no year, which can match any year.
	bySurname map[string]map[int][]int

	yearTolerance int
}

// NewIndex returns an empty Index using the given matching thresholds.
func NewIndex(cfg types.MatchConfig) *Index {
	if cfg.YearTolerance <= 0 {
		cfg.YearTolerance = types.DefaultMatchConfig().YearTolerance
	}
	return &Index{
		tester:        match.NewTester(cfg),
		byIdent:       make(map[identKey]int),
		bySurname:     make(map[string]map[int][]int),
		yearTolerance: cfg.YearTolerance,
	}
}

// Len returns the number of inserted records.
func (x *Index) Len() int { return len(x.records) }

// Record returns the record at arena index i.
func (x *Index) Record(i int) types.RawResult { return x.records[i] }

// Insert adds one record to the partition. It probes the identifier
// index; any hit attaches the record to that cluster, and hits on two
// distinct clusters merge them. It also runs the fuzzy test against the
// members of candidate clusters in the record's surname/year bucket; a
// fuzzy hit on a cluster distinct from the identifier hit merges the two,
// since the record is evidence they denote one publication. Running both
// paths on every insert (rather than letting an identifier hit
// short-circuit the fuzzy probe) is what keeps the final partition
// insertion-order independent when a record bridges an identifier-linked
// cluster and a fuzzy-linked one. A record matching nothing starts a new
// cluster.
func (x *Index) Insert(rec types.RawResult) {
	recIdx := len(x.records)
	x.records = append(x.records, rec)

	norm := identifier.Normalize(rec.Identifiers)
	x.normalized = append(x.normalized, norm)

	target := -1
	for kind, value := range norm {
		if cid, ok := x.byIdent[identKey{kind, value}]; ok {
			cid = x.liveID(cid)
			if target == -1 {
				target = cid
			} else if target != cid {
				// Two identifiers bridge two existing clusters.
				target = x.union(target, cid)
			}
		}
	}

	if fuzzy := x.fuzzyTarget(rec); fuzzy != -1 {
		if target == -1 {
			target = fuzzy
		} else if target != fuzzy {
			target = x.union(target, fuzzy)
		}
	}

	if target == -1 {
		target = len(x.members)
		x.members = append(x.members, []int{recIdx})
		x.parent = append(x.parent, target)
	} else {
		x.members[target] = append(x.members[target], recIdx)
	}
	x.clusterOf = append(x.clusterOf, target)

	for kind, value := range norm {
		x.byIdent[identKey{kind, value}] = target
	}
	x.addToBucket(rec, target)
}

// fuzzyTarget finds the cluster the record fuzzy-matches, or -1. Only
// clusters in the record's surname bucket (within year tolerance, plus
// the unknown-year bucket) are candidates; each candidate cluster is
// tested member by member, and ties between matching clusters go to the
// one whose representative was inserted first.
func (x *Index) fuzzyTarget(rec types.RawResult) int {
	surname := match.FirstAuthorSurname(rec.Authors)
	if surname == "" {
		// Author equality is mandatory on the fuzzy path, so a record
		// with no authors can only ever match by identifier.
		return -1
	}
	years, ok := x.bySurname[surname]
	if !ok {
		return -1
	}

	seen := make(map[int]bool)
	var candidates []int
	consider := func(cids []int) {
		for _, cid := range cids {
			cid = x.liveID(cid)
			if !seen[cid] {
				seen[cid] = true
				candidates = append(candidates, cid)
			}
		}
	}

	if rec.Year == 0 {
		// Unknown year is compatible with every year bucket.
		for _, cids := range years {
			consider(cids)
		}
	} else {
		for y := rec.Year - x.yearTolerance; y <= rec.Year+x.yearTolerance; y++ {
			consider(years[y])
		}
		consider(years[0])
	}

	best := -1
	for _, cid := range candidates {
		if !x.anyMemberMatches(cid, rec) {
			continue
		}
		if best == -1 || x.members[cid][0] < x.members[best][0] {
			best = cid
		}
	}
	return best
}

// anyMemberMatches runs the equivalence test between rec and every member
// of the cluster. Testing all members rather than a single representative
// keeps chained matches (A~B, B~C, A!~C) in one cluster regardless of
// which record arrived first.
func (x *Index) anyMemberMatches(cid int, rec types.RawResult) bool {
	for _, m := range x.members[cid] {
		if x.tester.Same(x.records[m], rec) {
			return true
		}
	}
	return false
}

// union merges two live clusters and returns the surviving ID, which is
// always the lower of the two so the survivor is the older cluster.
func (x *Index) union(a, b int) int {
	if a == b {
		return a
	}
	if b < a {
		a, b = b, a
	}

	for _, m := range x.members[b] {
		x.clusterOf[m] = a
		for kind, value := range x.normalized[m] {
			x.byIdent[identKey{kind, value}] = a
		}
	}
	x.members[a] = mergeOrdered(x.members[a], x.members[b])
	x.members[b] = nil
	x.parent[b] = a
	return a
}

// liveID resolves a possibly merged-away cluster ID to its survivor,
// compressing the path as it goes.
func (x *Index) liveID(cid int) int {
	root := cid
	for x.parent[root] != root {
		root = x.parent[root]
	}
	for x.parent[cid] != root {
		x.parent[cid], cid = root, x.parent[cid]
	}
	return root
}

// mergeOrdered merges two ascending index slices, preserving arrival order.
func mergeOrdered(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// addToBucket registers the record's cluster in the surname/year bucket.
func (x *Index) addToBucket(rec types.RawResult, cid int) {
	surname := match.FirstAuthorSurname(rec.Authors)
	if surname == "" {
		return
	}
	years, ok := x.bySurname[surname]
	if !ok {
		years = make(map[int][]int)
		x.bySurname[surname] = years
	}
	years[rec.Year] = append(years[rec.Year], cid)
}

// Clusters returns the current partition. Clusters are ordered by the
// arrival position of their earliest member, and members within a
// cluster are in arrival order, so the output is stable across runs with
// identical input.
func (x *Index) Clusters() []Cluster {
	var out []Cluster
	for _, m := range x.members {
		if m == nil {
			continue
		}
		out = append(out, Cluster{Members: m})
	}
	// members IDs are assigned in arrival order and union keeps the
	// lower ID, so the slice is already ordered by earliest member.
	return out
}
