// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibmerge/pkg/types"
)

// QueryFile is the on-disk representation of one search run: the query,
// the raw batches each source returned, and the canonical records the
// pipeline produced. Keeping the raw batches means the merge can later
// be re-run with different thresholds or priority without re-querying
// the APIs.
// Implements: prd002-sources R4.3.
type QueryFile struct {
	Query     QueryParams             `yaml:"query"`
	Batches   []SourceBatch           `yaml:"batches"`
	Canonical []types.CanonicalRecord `yaml:"canonical"`
	Summary   QuerySummary            `yaml:"summary"`
}

// QueryParams stores the query parameters in a serializable form.
type QueryParams struct {
	FreeText string   `yaml:"free_text,omitempty"`
	Author   string   `yaml:"author,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// SourceBatch is one source's raw result batch.
type SourceBatch struct {
	SourceID string            `yaml:"source_id"`
	Results  []types.RawResult `yaml:"results"`
}

// QuerySummary stores run statistics and a timestamp.
type QuerySummary struct {
	RawCount     int       `yaml:"raw_count"`
	Canonical    int       `yaml:"canonical"`
	DupsRemoved  int       `yaml:"duplicates_removed"`
	SourceErrors []string  `yaml:"source_errors,omitempty"`
	Timestamp    time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves a search run to a YAML file.
func WriteQueryFile(path string, query Query, sources []Source, batches Batches, canonical []types.CanonicalRecord) error {
	qf := QueryFile{
		Query: QueryParams{
			FreeText: query.FreeText,
			Author:   query.Author,
			Keywords: query.Keywords,
		},
		Canonical: canonical,
		Summary: QuerySummary{
			Canonical:    len(canonical),
			SourceErrors: batches.Errors,
			Timestamp:    time.Now(),
		},
	}
	for i, batch := range batches.PerSource {
		qf.Summary.RawCount += len(batch)
		qf.Batches = append(qf.Batches, SourceBatch{SourceID: sources[i].ID(), Results: batch})
	}
	qf.Summary.DupsRemoved = qf.Summary.RawCount - len(canonical)

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing query file: %w", err)
	}
	return nil
}

// ReadQueryFile loads a previously saved search run.
func ReadQueryFile(path string) (QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QueryFile{}, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return QueryFile{}, fmt.Errorf("parsing query file %s: %w", path, err)
	}
	return qf, nil
}

// RawBatches returns the stored raw batches in source order, ready to be
// fed back through the pipeline.
func (qf QueryFile) RawBatches() [][]types.RawResult {
	out := make([][]types.RawResult, len(qf.Batches))
	for i, b := range qf.Batches {
		out[i] = b.Results
	}
	return out
}
