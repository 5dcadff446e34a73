// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source queries the external bibliographic databases and
// collects their raw result batches. Each database (Crossref, arXiv,
// OpenAlex, Semantic Scholar) implements the Source interface; Collect
// fans a query out to all of them concurrently and joins every batch
// before the deduplication pipeline runs, so clustering never races
// in-flight queries.
// Implements: prd002-sources (R1-R5);
//
//	docs/ARCHITECTURE § Sources.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pdiddy/bibmerge/pkg/types"
)

// Source searches a single external database and parses its responses
// into RawResult values. Pagination, rate limiting, and transport errors
// are entirely the client's concern; the engine only ever sees parsed
// records.
type Source interface {
	// ID returns the source identifier used in RawResult.SourceID and
	// in the merge priority list (e.g. "crossref").
	ID() string

	Search(ctx context.Context, query Query, cfg types.SourceConfig) ([]types.RawResult, error)
}

// Query holds the search parameters shared by all sources.
type Query struct {
	FreeText string
	Author   string
	Keywords []string
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return q.FreeText == "" && q.Author == "" && len(q.Keywords) == 0
}

// Batches holds one raw result batch per source, in the order the
// sources were configured, plus per-source failures. A failed or
// cancelled source contributes an empty batch rather than failing the
// whole collection.
type Batches struct {
	// PerSource is indexed like the sources slice passed to Collect.
	PerSource [][]types.RawResult

	// Errors describes each source that failed, as "id: cause".
	Errors []string
}

// Flatten concatenates all batches in source order.
func (b Batches) Flatten() []types.RawResult {
	var out []types.RawResult
	for _, batch := range b.PerSource {
		out = append(out, batch...)
	}
	return out
}

// Collect fans the query out to every source concurrently and joins all
// batches before returning. Per-source failures are reported as warnings
// on w and in Batches.Errors; Collect itself fails only for an empty
// query or an empty source list.
func Collect(ctx context.Context, query Query, sources []Source, cfg types.SourceConfig, w io.Writer) (Batches, error) {
	if query.IsEmpty() {
		return Batches{}, fmt.Errorf("query is empty: provide search terms")
	}
	if len(sources) == 0 {
		return Batches{}, fmt.Errorf("no sources configured")
	}

	results := make([][]types.RawResult, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	for i, s := range sources {
		if i > 0 && cfg.InterSourceDelay > 0 {
			time.Sleep(cfg.InterSourceDelay)
		}
		wg.Add(1)
		go func(i int, s Source) {
			defer wg.Done()
			results[i], errs[i] = s.Search(ctx, query, cfg)
		}(i, s)
	}
	wg.Wait()

	out := Batches{PerSource: results}
	for i, err := range errs {
		if err != nil {
			msg := fmt.Sprintf("%s: %v", sources[i].ID(), err)
			out.Errors = append(out.Errors, msg)
			fmt.Fprintf(w, "warning: source %s failed: %v\n", sources[i].ID(), err)
			out.PerSource[i] = nil
		}
	}
	return out, nil
}

// Enabled builds the configured source list. The order is fixed
// (crossref, openalex, semanticscholar, arxiv) so collection output is
// reproducible for a given configuration.
func Enabled(cfg types.SourceConfig) []Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &http.Client{Timeout: timeout}

	var sources []Source
	if cfg.EnableCrossref {
		sources = append(sources, &Crossref{Client: c, Mailto: cfg.CrossrefMailto})
	}
	if cfg.EnableOpenAlex {
		sources = append(sources, &OpenAlex{Client: c, Email: cfg.OpenAlexEmail})
	}
	if cfg.EnableSemanticScholar {
		sources = append(sources, &SemanticScholar{Client: c, APIKey: cfg.SemanticScholarAPIKey})
	}
	if cfg.EnableArxiv {
		sources = append(sources, &Arxiv{Client: c})
	}
	return sources
}
