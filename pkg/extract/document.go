package extract

import "strings"

// Page is one extracted page: reconstructed reading-order text plus an
// optional PNG raster. Index is 1-based. Image is empty when no rendering
// surface was available.
type Page struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Image []byte `json:"image,omitempty"`
}

// Document is the ordered result of extracting one uploaded file.
type Document struct {
	Pages []Page `json:"pages"`
}

// CombinedText joins all page texts with a blank line between pages. This is
// the text block handed to the generation pipeline.
func (d *Document) CombinedText() string {
	texts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n\n")
}

// Images returns the page rasters in page order, skipping pages that have
// none.
func (d *Document) Images() [][]byte {
	images := make([][]byte, 0, len(d.Pages))
	for _, p := range d.Pages {
		if len(p.Image) > 0 {
			images = append(images, p.Image)
		}
	}
	return images
}

// IsEmpty reports whether extraction produced nothing usable: all text is
// blank and no page image was rendered.
func (d *Document) IsEmpty() bool {
	if strings.TrimSpace(d.CombinedText()) != "" {
		return false
	}
	return len(d.Images()) == 0
}
