// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier canonicalizes bibliographic identifiers so that the
// same publication reported by different databases compares equal.
// Implements: prd003-matching (R1.1-R1.5);
//
//	docs/ARCHITECTURE § Identifier Normalization.
package identifier

import (
	"regexp"
	"strings"

	"github.com/pdiddy/bibmerge/pkg/types"
)

// arxivVersion matches a trailing version suffix ("v1", "v12") on an
// arXiv ID so that "2401.12345v2" and "2401.12345" normalize identically.
var arxivVersion = regexp.MustCompile(`v\d+$`)

// nonDigit strips everything but digits from a PMID.
var nonDigit = regexp.MustCompile(`\D`)

// Normalize canonicalizes every identifier in the mapping. Malformed
// values are dropped, never reported: a raw identifier that cannot be
// normalized simply does not participate in comparison. Unknown kinds
// pass through trimmed, or are dropped if empty after trimming.
func Normalize(ids map[types.IdentifierKind]string) map[types.IdentifierKind]string {
	if len(ids) == 0 {
		return nil
	}
	out := make(map[types.IdentifierKind]string, len(ids))
	for kind, raw := range ids {
		if v, ok := NormalizeOne(kind, raw); ok {
			out[kind] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NormalizeOne canonicalizes a single identifier value. The second return
// is false when the value is unusable for comparison.
func NormalizeOne(kind types.IdentifierKind, raw string) (string, bool) {
	switch kind {
	case types.KindDOI:
		return NormalizeDOI(raw)
	case types.KindArxiv:
		return NormalizeArxiv(raw)
	case types.KindBibcode:
		return NormalizeBibcode(raw)
	case types.KindPMID:
		return NormalizePMID(raw)
	default:
		v := strings.TrimSpace(raw)
		return v, v != ""
	}
}

// NormalizeDOI lower-cases a DOI and strips resolver prefixes
// ("https://doi.org/", "http://dx.doi.org/") and the bare "doi:" prefix.
func NormalizeDOI(raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		v = strings.TrimPrefix(v, prefix)
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// NormalizeArxiv strips the "arXiv:" prefix and any trailing version
// suffix, then lower-cases the ID. Both the modern ("2401.12345") and
// legacy ("hep-th/9901001") forms are accepted.
func NormalizeArxiv(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if len(v) >= 6 && strings.EqualFold(v[:6], "arxiv:") {
		v = v[6:]
	}
	v = arxivVersion.ReplaceAllString(v, "")
	v = strings.ToLower(strings.TrimSpace(v))
	return v, v != ""
}

// NormalizeBibcode trims whitespace only. Bibcodes are position-encoded
// and case-significant, so they must not be case-folded.
func NormalizeBibcode(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	return v, v != ""
}

// NormalizePMID keeps digits only; a value with no digits is dropped.
func NormalizePMID(raw string) (string, bool) {
	v := nonDigit.ReplaceAllString(raw, "")
	return v, v != ""
}
