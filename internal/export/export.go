// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders canonical records in citation interchange
// formats (BibTeX, RIS, CSL-YAML).
// Implements: prd006-export (R1-R3);
//
//	docs/ARCHITECTURE § Export.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/bibmerge/pkg/types"
)

// citeKeys assigns a stable citation key to every record: lowercase
// first-author surname plus year, with "a", "b", ... suffixes on
// collision. Records without authors fall back to a title token or a
// running index.
func citeKeys(records []types.CanonicalRecord) []string {
	keys := make([]string, len(records))
	seen := map[string]int{}

	for i, r := range records {
		base := keyBase(r, i)
		n := seen[base]
		seen[base] = n + 1
		if n == 0 {
			keys[i] = base
		} else {
			keys[i] = fmt.Sprintf("%s%c", base, 'a'+n-1)
		}
	}
	return keys
}

func keyBase(r types.CanonicalRecord, i int) string {
	var stem string
	if len(r.Authors) > 0 {
		_, family := splitName(r.Authors[0])
		stem = sanitizeKeyPart(family)
	}
	if stem == "" {
		fields := strings.Fields(r.Title)
		if len(fields) > 0 {
			stem = sanitizeKeyPart(fields[0])
		}
	}
	if stem == "" {
		stem = fmt.Sprintf("ref%d", i+1)
	}
	if r.Year != 0 {
		return fmt.Sprintf("%s%d", stem, r.Year)
	}
	return stem
}

func sanitizeKeyPart(s string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(s) {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// splitName splits an author name into given and family parts. Names
// in "Family, Given" form split on the comma; otherwise the last
// space-separated token is the family name. Single-token names return
// an empty given part.
func splitName(name string) (given, family string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	if idx := strings.Index(name, ","); idx >= 0 {
		return strings.TrimSpace(name[idx+1:]), strings.TrimSpace(name[:idx])
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}
