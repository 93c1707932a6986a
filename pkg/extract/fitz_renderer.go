package extract

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// DefaultRenderDPI balances legibility of exam material against payload size
// when the rasters are sent to the generation model.
const DefaultRenderDPI = 150

// FitzRenderer renders pages through MuPDF.
type FitzRenderer struct {
	dpi float64
}

func NewFitzRenderer(dpi float64) *FitzRenderer {
	if dpi <= 0 {
		dpi = DefaultRenderDPI
	}
	return &FitzRenderer{dpi: dpi}
}

func (r *FitzRenderer) Open(data []byte) (RenderSession, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open render surface: %w", err)
	}
	return &fitzSession{doc: doc, dpi: r.dpi}, nil
}

// fitzSession holds one MuPDF document handle, reused across all pages.
type fitzSession struct {
	doc *fitz.Document
	dpi float64
}

func (s *fitzSession) PageCount() int {
	return s.doc.NumPage()
}

func (s *fitzSession) Render(pageIndex int) ([]byte, error) {
	img, err := s.doc.ImageDPI(pageIndex, s.dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", pageIndex+1, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", pageIndex+1, err)
	}
	return buf.Bytes(), nil
}

func (s *fitzSession) Close() error {
	return s.doc.Close()
}
