// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"

	"github.com/pdiddy/bibmerge/pkg/types"
)

// WriteRIS writes records in RIS tagged format (R2). Each record is a
// TY..ER block; AU lines repeat per author in "Family, Given" form.
func WriteRIS(records []types.CanonicalRecord, w io.Writer) error {
	for i, r := range records {
		tag := func(name, value string) error {
			if value == "" {
				return nil
			}
			_, err := fmt.Fprintf(w, "%s  - %s\n", name, value)
			return err
		}

		if err := tag("TY", "JOUR"); err != nil {
			return err
		}
		if err := tag("TI", r.Title); err != nil {
			return err
		}
		for _, a := range r.Authors {
			if err := tag("AU", bibtexName(a)); err != nil {
				return err
			}
		}
		if r.Year != 0 {
			if err := tag("PY", fmt.Sprintf("%d", r.Year)); err != nil {
				return err
			}
		}
		if err := tag("JO", r.Venue); err != nil {
			return err
		}
		if err := tag("AB", r.Abstract); err != nil {
			return err
		}
		if err := tag("DO", r.Identifier(types.KindDOI)); err != nil {
			return err
		}
		for _, u := range r.ExternalURLs {
			if err := tag("UR", u); err != nil {
				return err
			}
		}
		for _, u := range r.PDFURLs {
			if err := tag("L1", u); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, "ER  -"); err != nil {
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
