package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func permutations(frags []TextFragment) [][]TextFragment {
	if len(frags) <= 1 {
		return [][]TextFragment{frags}
	}
	var result [][]TextFragment
	for i := range frags {
		rest := make([]TextFragment, 0, len(frags)-1)
		rest = append(rest, frags[:i]...)
		rest = append(rest, frags[i+1:]...)
		for _, p := range permutations(rest) {
			perm := append([]TextFragment{frags[i]}, p...)
			result = append(result, perm)
		}
	}
	return result
}

func TestReconstructPageText_LineOrderIsInputOrderInvariant(t *testing.T) {
	// Fragments sharing one vertical band must always interleave left to
	// right no matter how the reader emitted them.
	frags := []TextFragment{
		{Content: "Soal", OriginX: 10, OriginY: 700},
		{Content: "Ujian", OriginX: 80, OriginY: 700},
		{Content: "Matematika", OriginX: 150, OriginY: 700},
		{Content: "VII", OriginX: 260, OriginY: 700},
	}

	for _, perm := range permutations(frags) {
		got := ReconstructPageText(perm)
		assert.Equal(t, "Soal Ujian Matematika VII", got)
	}
}

func TestReconstructPageText_LineBreaksBetweenBandsOnly(t *testing.T) {
	tests := []struct {
		name      string
		fragments []TextFragment
		wantLines int
	}{
		{
			name: "three bands",
			fragments: []TextFragment{
				{Content: "c", OriginX: 0, OriginY: 100},
				{Content: "a", OriginX: 0, OriginY: 300},
				{Content: "b", OriginX: 0, OriginY: 200},
			},
			wantLines: 3,
		},
		{
			name: "two bands with shared lines",
			fragments: []TextFragment{
				{Content: "x2", OriginX: 50, OriginY: 400},
				{Content: "y1", OriginX: 0, OriginY: 150},
				{Content: "x1", OriginX: 0, OriginY: 400},
				{Content: "y2", OriginX: 90, OriginY: 150},
			},
			wantLines: 2,
		},
		{
			name: "single band",
			fragments: []TextFragment{
				{Content: "solo", OriginX: 5, OriginY: 10},
				{Content: "line", OriginX: 50, OriginY: 10},
			},
			wantLines: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReconstructPageText(tt.fragments)
			assert.Equal(t, tt.wantLines-1, strings.Count(got, "\n"))
		})
	}
}

func TestReconstructPageText_TopOfPageComesFirst(t *testing.T) {
	frags := []TextFragment{
		{Content: "bottom", OriginX: 0, OriginY: 50},
		{Content: "top", OriginX: 0, OriginY: 780},
		{Content: "middle", OriginX: 0, OriginY: 400},
	}

	assert.Equal(t, "top\nmiddle\nbottom", ReconstructPageText(frags))
}

func TestReconstructPageText_DegenerateInput(t *testing.T) {
	assert.Equal(t, "", ReconstructPageText(nil))
	assert.Equal(t, "", ReconstructPageText([]TextFragment{}))
	assert.Equal(t, "only", ReconstructPageText([]TextFragment{{Content: "only"}}))

	// Missing position data: everything collapses onto one zero-Y line but
	// nothing crashes and all content survives.
	got := ReconstructPageText([]TextFragment{
		{Content: "a"},
		{Content: "b"},
		{Content: "c"},
	})
	assert.Equal(t, "a b c", got)
}

func TestReconstructPageText_NoSpaceBeforeFirstContentOnLine(t *testing.T) {
	// An empty fragment does not count as emitted content, so the next
	// fragment on the same line must not get a leading space.
	frags := []TextFragment{
		{Content: "", OriginX: 0, OriginY: 100},
		{Content: "first", OriginX: 20, OriginY: 100},
		{Content: "second", OriginX: 90, OriginY: 100},
	}

	assert.Equal(t, "first second", ReconstructPageText(frags))
}
