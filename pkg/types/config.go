// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by the source clients.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bibmerge/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig holds settings for the source fan-out stage.
// Per prd002-sources R1.3, R5.1-R5.5.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results requested per source
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableCrossref controls whether the Crossref client is used.
	EnableCrossref bool `json:"enable_crossref" yaml:"enable_crossref"`

	// EnableArxiv controls whether the arXiv client is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableOpenAlex controls whether the OpenAlex client is used.
	EnableOpenAlex bool `json:"enable_openalex" yaml:"enable_openalex"`

	// EnableSemanticScholar controls whether the Semantic Scholar client is used.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// CrossrefMailto is the contact address sent to Crossref for polite
	// pool access.
	CrossrefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty"`

	// OpenAlexEmail is sent as the mailto parameter to OpenAlex.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// InterSourceDelay is the delay between launching requests to
	// different sources (default 1s).
	InterSourceDelay time.Duration `json:"inter_source_delay" yaml:"inter_source_delay"`
}

// MatchConfig holds the equivalence-test thresholds.
// These are plain configuration values so callers can tune matching
// without touching the decision logic. Per prd003-matching R4.1-R4.2.
type MatchConfig struct {
	// TitleSimilarityThreshold is the minimum token-set Jaccard
	// similarity for the fuzzy path (default 0.85). A similarity equal
	// to the threshold counts as a match.
	TitleSimilarityThreshold float64 `json:"title_similarity_threshold" yaml:"title_similarity_threshold"`

	// YearTolerance is the maximum publication-year difference allowed
	// on the fuzzy path (default 1). Records missing a year are never
	// blocked by this condition.
	YearTolerance int `json:"year_tolerance" yaml:"year_tolerance"`
}

// DefaultMatchConfig returns the standard matching thresholds.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		TitleSimilarityThreshold: 0.85,
		YearTolerance:            1,
	}
}

// MergeConfig holds the source-priority ordering used when merging a
// cluster into one canonical record. Per prd004-merge R1.1.
type MergeConfig struct {
	// Priority ranks source IDs from most to least trusted for scalar
	// fields. Sources absent from the list fall back to cluster arrival
	// order.
	Priority []string `json:"priority" yaml:"priority"`
}

// DefaultMergeConfig returns the standard source ranking, reflecting
// curation quality for scalar bibliographic fields.
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		Priority: []string{
			"crossref",
			"pubmed",
			"ads",
			"semanticscholar",
			"openalex",
			"arxiv",
			"dblp",
		},
	}
}

// LibraryConfig holds settings for the local library store.
type LibraryConfig struct {
	// LibraryDir is the base directory for the library (contains
	// index/, exports/).
	LibraryDir string `json:"library_dir" yaml:"library_dir"`

	// MaxResults is the default maximum number of list/query results
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all stage configurations.
type Config struct {
	Sources SourceConfig  `json:"sources" yaml:"sources"`
	Match   MatchConfig   `json:"match" yaml:"match"`
	Merge   MergeConfig   `json:"merge" yaml:"merge"`
	Library LibraryConfig `json:"library" yaml:"library"`
}
