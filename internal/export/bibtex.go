// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/bibmerge/pkg/types"
)

// WriteBibTeX writes records as BibTeX @article entries (R1).
func WriteBibTeX(records []types.CanonicalRecord, w io.Writer) error {
	keys := citeKeys(records)

	for i, r := range records {
		var fields []string
		add := func(name, value string) {
			if value != "" {
				fields = append(fields, fmt.Sprintf("  %s = {%s}", name, escapeBibTeX(value)))
			}
		}

		add("title", r.Title)
		if len(r.Authors) > 0 {
			names := make([]string, len(r.Authors))
			for j, a := range r.Authors {
				names[j] = bibtexName(a)
			}
			add("author", strings.Join(names, " and "))
		}
		if r.Year != 0 {
			add("year", fmt.Sprintf("%d", r.Year))
		}
		add("journal", r.Venue)
		add("doi", r.Identifier(types.KindDOI))
		if arxiv := r.Identifier(types.KindArxiv); arxiv != "" {
			add("eprint", arxiv)
			add("archiveprefix", "arXiv")
		}
		if len(r.ExternalURLs) > 0 {
			add("url", r.ExternalURLs[0])
		}
		add("abstract", r.Abstract)

		if _, err := fmt.Fprintf(w, "@article{%s,\n%s\n}\n", keys[i], strings.Join(fields, ",\n")); err != nil {
			return err
		}
		if i < len(records)-1 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// bibtexName renders a name as "Family, Given" so BibTeX parses
// multi-token family names correctly.
func bibtexName(name string) string {
	given, family := splitName(name)
	if given == "" {
		return family
	}
	return family + ", " + given
}

func escapeBibTeX(s string) string {
	s = strings.ReplaceAll(s, "{", "\\{")
	s = strings.ReplaceAll(s, "}", "\\}")
	return strings.ReplaceAll(s, "&", "\\&")
}
