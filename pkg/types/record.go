// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bibmerge engine.
// Implements: prd001-model (RawResult, CanonicalRecord);
//
//	docs/ARCHITECTURE § Data Model.
package types

// IdentifierKind names a class of bibliographic identifier.
type IdentifierKind string

const (
	KindDOI     IdentifierKind = "doi"
	KindArxiv   IdentifierKind = "arxiv"
	KindBibcode IdentifierKind = "bibcode"
	KindPMID    IdentifierKind = "pmid"
)

// RawResult is one record as returned by exactly one external database.
// SourceID plus SourceLocalID uniquely identify a RawResult within one
// ingestion batch. RawResults are never mutated after construction.
type RawResult struct {
	// SourceID identifies the external database that produced this
	// record (e.g. "crossref", "arxiv").
	SourceID string `json:"source_id" yaml:"source_id"`

	// SourceLocalID is the source's own identifier for the item: a DOI,
	// arXiv ID, bibcode, PMID, or an opaque internal ID.
	SourceLocalID string `json:"source_local_id" yaml:"source_local_id"`

	// Title is the title as returned by the source. Empty if unknown.
	Title string `json:"title" yaml:"title"`

	// Authors lists the authors in source order, either "Last, First"
	// or "First Last" depending on the source.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year. Zero means unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal or conference name, if known.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Abstract is the abstract or summary, if known.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// ExternalURL is the source's landing page for the item.
	ExternalURL string `json:"external_url,omitempty" yaml:"external_url,omitempty"`

	// PDFURL is a direct full-text link, if the source provides one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Identifiers maps identifier kind to the raw string as returned by
	// the source. Values are not normalized; may be empty.
	Identifiers map[IdentifierKind]string `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`
}

// Identifier is one normalized (kind, value) pair on a canonical record.
type Identifier struct {
	Kind  IdentifierKind `json:"kind" yaml:"kind"`
	Value string         `json:"value" yaml:"value"`
}

// SourceRef names one raw result that contributed to a canonical record.
type SourceRef struct {
	SourceID      string `json:"source_id" yaml:"source_id"`
	SourceLocalID string `json:"source_local_id" yaml:"source_local_id"`
}

// CanonicalRecord is the merged output for one cluster of raw results.
// Scalar fields carry one value chosen by source priority; identifiers and
// URLs are the normalized union across the cluster; Provenance names every
// contributing raw result in insertion order.
type CanonicalRecord struct {
	Title    string   `json:"title" yaml:"title"`
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year     int      `json:"year,omitempty" yaml:"year,omitempty"`
	Venue    string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	Abstract string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Identifiers is the union of normalized identifiers across the
	// cluster, in first-contribution order.
	Identifiers []Identifier `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`

	// ExternalURLs and PDFURLs are de-duplicated unions across the cluster.
	ExternalURLs []string `json:"external_urls,omitempty" yaml:"external_urls,omitempty"`
	PDFURLs      []string `json:"pdf_urls,omitempty" yaml:"pdf_urls,omitempty"`

	Provenance []SourceRef `json:"provenance" yaml:"provenance"`
}

// Identifier returns the first identifier value of the given kind, or ""
// if the record carries none.
func (r CanonicalRecord) Identifier(kind IdentifierKind) string {
	for _, id := range r.Identifiers {
		if id.Kind == kind {
			return id.Value
		}
	}
	return ""
}
