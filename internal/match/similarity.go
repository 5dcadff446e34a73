// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match decides whether two raw results denote the same
// publication. It combines normalized-identifier equality with a fuzzy
// test over title token sets, first-author surnames, and years.
// Implements: prd003-matching (R2-R4);
//
//	docs/ARCHITECTURE § Matching.
package match

import (
	"strings"
	"unicode"
)

// stopWords are dropped from title token sets before computing Jaccard
// similarity. Articles and short prepositions carry no discriminating
// signal between titles.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "on": {}, "in": {},
	"and": {}, "for": {}, "to": {}, "with": {}, "by": {}, "at": {},
	"from": {}, "as": {}, "is": {}, "its": {},
}

// TitleSimilarity returns the Jaccard similarity of the two titles'
// normalized token sets, in [0, 1]. An empty token set on either side
// yields 0: two titles with no usable tokens carry no positive evidence,
// so they are conservatively judged dissimilar.
func TitleSimilarity(a, b string) float64 {
	ta := titleTokens(a)
	tb := titleTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

// titleTokens lower-cases the title, strips punctuation, splits on
// whitespace, and removes stop words.
func titleTokens(title string) map[string]struct{} {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	if len(fields) == 0 {
		return nil
	}
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens[f] = struct{}{}
	}
	return tokens
}

// FirstAuthorSurname extracts the surname of the first listed author,
// lower-cased. Both "Last, First" and "First Last" forms are handled:
// with a comma the surname is the part before it, otherwise the last
// whitespace-separated token. Returns "" when the author list is empty.
func FirstAuthorSurname(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	name := strings.TrimSpace(authors[0])
	if name == "" {
		return ""
	}

	if idx := strings.Index(name, ","); idx >= 0 {
		return strings.ToLower(strings.TrimSpace(name[:idx]))
	}
	fields := strings.Fields(name)
	return strings.ToLower(fields[len(fields)-1])
}

// SameFirstAuthor reports whether the first-author surnames of the two
// author lists are equal, case-insensitively. A record with no authors
// never satisfies author equality.
func SameFirstAuthor(a, b []string) bool {
	sa := FirstAuthorSurname(a)
	sb := FirstAuthorSurname(b)
	return sa != "" && sa == sb
}
