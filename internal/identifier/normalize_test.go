// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/bibmerge/pkg/types"
)

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"10.1000/x", "10.1000/x", true},
		{"10.1000/ABC.Def", "10.1000/abc.def", true},
		{"https://doi.org/10.1000/x", "10.1000/x", true},
		{"http://dx.doi.org/10.1000/x", "10.1000/x", true},
		{"doi:10.1000/x", "10.1000/x", true},
		{"  10.1000/x \n", "10.1000/x", true},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeDOI(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizeArxiv(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2401.12345", "2401.12345", true},
		{"2401.12345v2", "2401.12345", true},
		{"2401.12345v12", "2401.12345", true},
		{"arXiv:2401.12345", "2401.12345", true},
		{"arXiv:2401.12345v3", "2401.12345", true},
		{"hep-th/9901001", "hep-th/9901001", true},
		{"Hep-TH/9901001v1", "hep-th/9901001", true},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeArxiv(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizeBibcodeKeepsCase(t *testing.T) {
	got, ok := NormalizeBibcode(" 1997ApJ...490..493N ")
	assert.True(t, ok)
	assert.Equal(t, "1997ApJ...490..493N", got)
}

func TestNormalizePMID(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"12345678", "12345678", true},
		{"PMID: 12345678", "12345678", true},
		{"pmid12345678", "12345678", true},
		{"no digits", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizePMID(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizeDropsMalformed(t *testing.T) {
	got := Normalize(map[types.IdentifierKind]string{
		types.KindDOI:   "DOI:10.1000/X",
		types.KindPMID:  "none",
		types.KindArxiv: "2401.12345v2",
	})
	assert.Equal(t, map[types.IdentifierKind]string{
		types.KindDOI:   "10.1000/x",
		types.KindArxiv: "2401.12345",
	}, got)
}

func TestNormalizeUnknownKindPassesThrough(t *testing.T) {
	got := Normalize(map[types.IdentifierKind]string{
		"mag": " 2963403868 ",
		"s2":  "   ",
	})
	assert.Equal(t, map[types.IdentifierKind]string{
		types.IdentifierKind("mag"): "2963403868",
	}, got)
}

func TestNormalizeEmptyMap(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize(map[types.IdentifierKind]string{}))
	assert.Nil(t, Normalize(map[types.IdentifierKind]string{types.KindPMID: "x"}))
}
