// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/bibmerge/internal/netutil"
	"github.com/pdiddy/bibmerge/pkg/types"
)

// crossrefAPIBase is the Crossref works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// jatsTag strips the JATS markup Crossref embeds in abstracts.
var jatsTag = regexp.MustCompile(`</?jats:[^>]+>`)

// Crossref queries the Crossref REST API (R2.1).
type Crossref struct {
	Client *http.Client
	// Mailto is included in the query string for polite pool access.
	Mailto string
}

// ID returns the source identifier.
func (s *Crossref) ID() string { return "crossref" }

// Search queries Crossref and returns raw results keyed by DOI.
func (s *Crossref) Search(ctx context.Context, query Query, cfg types.SourceConfig) ([]types.RawResult, error) {
	q := joinQueryTerms(query)
	if q == "" {
		return nil, fmt.Errorf("empty Crossref query")
	}

	rows := cfg.MaxResults
	if rows <= 0 {
		rows = 20
	}

	params := url.Values{
		"query": {q},
		"rows":  {fmt.Sprintf("%d", rows)},
	}
	if query.Author != "" {
		params.Set("query.author", query.Author)
	}
	if s.Mailto != "" {
		params.Set("mailto", s.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := netutil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Crossref API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Crossref API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing Crossref response: %w", err)
	}

	var results []types.RawResult
	for _, item := range cr.Message.Items {
		if item.DOI == "" {
			continue
		}

		r := types.RawResult{
			SourceID:      s.ID(),
			SourceLocalID: item.DOI,
			Year:          crossrefYear(item),
			Abstract:      strings.TrimSpace(jatsTag.ReplaceAllString(item.Abstract, "")),
			ExternalURL:   item.URL,
			Identifiers:   map[types.IdentifierKind]string{types.KindDOI: item.DOI},
		}
		if len(item.Title) > 0 {
			r.Title = strings.TrimSpace(item.Title[0])
		}
		if len(item.ContainerTitle) > 0 {
			r.Venue = item.ContainerTitle[0]
		}
		for _, a := range item.Author {
			r.Authors = append(r.Authors, crossrefAuthorName(a))
		}
		for _, l := range item.Link {
			if l.ContentType == "application/pdf" && l.URL != "" {
				r.PDFURL = l.URL
				break
			}
		}

		results = append(results, r)
	}
	return results, nil
}

// crossrefYear extracts the year from issued date-parts, falling back to
// the published-print field.
func crossrefYear(item crossrefItem) int {
	for _, parts := range [][][]int{item.Issued.DateParts, item.PublishedPrint.DateParts} {
		if len(parts) > 0 && len(parts[0]) > 0 {
			return parts[0][0]
		}
	}
	return 0
}

// crossrefAuthorName renders a Crossref author as "Family, Given".
func crossrefAuthorName(a crossrefAuthor) string {
	switch {
	case a.Family != "" && a.Given != "":
		return a.Family + ", " + a.Given
	case a.Family != "":
		return a.Family
	default:
		return a.Name
	}
}

// joinQueryTerms combines the query fields into a single search string.
func joinQueryTerms(q Query) string {
	var parts []string
	if q.FreeText != "" {
		parts = append(parts, q.FreeText)
	}
	if q.Author != "" {
		parts = append(parts, q.Author)
	}
	parts = append(parts, q.Keywords...)
	return strings.Join(parts, " ")
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefItem `json:"items"`
}

type crossrefItem struct {
	DOI            string           `json:"DOI"`
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Abstract       string           `json:"abstract"`
	URL            string           `json:"URL"`
	Author         []crossrefAuthor `json:"author"`
	Issued         crossrefDate     `json:"issued"`
	PublishedPrint crossrefDate     `json:"published-print"`
	Link           []crossrefLink   `json:"link"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefLink struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}
