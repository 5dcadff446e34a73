// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/bibmerge/internal/netutil"
	"github.com/pdiddy/bibmerge/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint.
// Declared as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,year,venue,url,openAccessPdf"

// SemanticScholar queries the Semantic Scholar Graph API (R2.4).
type SemanticScholar struct {
	Client *http.Client
	APIKey string
}

// ID returns the source identifier.
func (s *SemanticScholar) ID() string { return "semanticscholar" }

// Search queries Semantic Scholar and returns raw results keyed by the
// S2 paper ID, with DOI, arXiv ID, and PMID attached when present.
func (s *SemanticScholar) Search(ctx context.Context, query Query, cfg types.SourceConfig) ([]types.RawResult, error) {
	q := joinQueryTerms(query)
	if q == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	params := url.Values{
		"query":  {q},
		"limit":  {fmt.Sprintf("%d", maxResults)},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := netutil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	var results []types.RawResult
	for _, paper := range sr.Data {
		if paper.PaperID == "" {
			continue
		}

		r := types.RawResult{
			SourceID:      s.ID(),
			SourceLocalID: paper.PaperID,
			Title:         paper.Title,
			Abstract:      paper.Abstract,
			Year:          paper.Year,
			Venue:         paper.Venue,
			ExternalURL:   paper.URL,
			PDFURL:        paper.OpenAccessPdf.URL,
			Identifiers:   map[types.IdentifierKind]string{},
		}
		for _, a := range paper.Authors {
			r.Authors = append(r.Authors, a.Name)
		}
		if paper.ExternalIDs.DOI != "" {
			r.Identifiers[types.KindDOI] = paper.ExternalIDs.DOI
		}
		if paper.ExternalIDs.ArXiv != "" {
			r.Identifiers[types.KindArxiv] = paper.ExternalIDs.ArXiv
		}
		if paper.ExternalIDs.PubMed != "" {
			r.Identifiers[types.KindPMID] = paper.ExternalIDs.PubMed
		}

		results = append(results, r)
	}
	return results, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Data []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string             `json:"paperId"`
	Title         string             `json:"title"`
	Abstract      string             `json:"abstract"`
	Year          int                `json:"year"`
	Venue         string             `json:"venue"`
	URL           string             `json:"url"`
	Authors       []semanticAuthor   `json:"authors"`
	ExternalIDs   semanticExternalID `json:"externalIds"`
	OpenAccessPdf semanticPDF        `json:"openAccessPdf"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticExternalID struct {
	DOI    string `json:"DOI"`
	ArXiv  string `json:"ArXiv"`
	PubMed string `json:"PubMed"`
}

type semanticPDF struct {
	URL string `json:"url"`
}
