// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibmerge/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers (R3).
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	PMID           string    `yaml:"PMID,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes records as a CSL-YAML list to w.
func WriteCSL(records []types.CanonicalRecord, w io.Writer) error {
	keys := citeKeys(records)
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = toCSLItem(keys[i], r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a CanonicalRecord to a CSLItem.
func toCSLItem(id string, r types.CanonicalRecord) CSLItem {
	item := CSLItem{
		ID:             id,
		Type:           "article-journal",
		Title:          r.Title,
		Abstract:       r.Abstract,
		ContainerTitle: r.Venue,
		DOI:            r.Identifier(types.KindDOI),
		PMID:           r.Identifier(types.KindPMID),
	}
	if r.Venue == "" {
		item.Type = "article"
	}

	for _, a := range r.Authors {
		item.Author = append(item.Author, cslName(a))
	}

	if r.Year != 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{r.Year}}}
	}
	if len(r.ExternalURLs) > 0 {
		item.URL = r.ExternalURLs[0]
	}

	return item
}

// cslName splits a full name string into CSL family/given parts.
// Single-token names use the literal field.
func cslName(name string) CSLName {
	given, family := splitName(name)
	if given == "" && family != "" {
		return CSLName{Literal: family}
	}
	return CSLName{Given: given, Family: family}
}
