package extract

import (
	"sort"
	"strings"
)

// TextFragment is one positioned piece of page text as it comes out of the
// PDF content stream. OriginX/OriginY are the baseline origin in page
// coordinate space, where a larger Y sits higher on the page.
type TextFragment struct {
	Content string
	OriginX float64
	OriginY float64
}

// ReconstructPageText orders an unordered set of fragments into best-effort
// reading order for a single page and joins them into one string.
//
// Fragments are sorted top-of-page first (descending OriginY) and ties are
// broken left to right (ascending OriginX). A change in OriginY starts a new
// line; fragments sharing a line are separated by a single space once the
// line already has content. No other whitespace normalization happens.
//
// The heuristic assumes left-to-right, top-to-bottom typesetting. Multi-column
// layouts will interleave columns; that is a known limitation of this
// approach, not something this function tries to detect.
func ReconstructPageText(fragments []TextFragment) string {
	if len(fragments) == 0 {
		return ""
	}

	sorted := make([]TextFragment, len(fragments))
	copy(sorted, fragments)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].OriginY != sorted[j].OriginY {
			return sorted[i].OriginY > sorted[j].OriginY
		}
		return sorted[i].OriginX < sorted[j].OriginX
	})

	var sb strings.Builder
	lineHasContent := false

	for i, frag := range sorted {
		if i > 0 {
			if frag.OriginY != sorted[i-1].OriginY {
				sb.WriteString("\n")
				lineHasContent = false
			} else if lineHasContent {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(frag.Content)
		if frag.Content != "" {
			lineHasContent = true
		}
	}

	return sb.String()
}
