package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"ai-examgen-be/internal/pkg/logger"
)

var (
	// ErrInvalidFileType rejects input whose declared type is not PDF,
	// before any extraction work starts.
	ErrInvalidFileType = errors.New("file is not a PDF document")

	// ErrMalformedDocument means the byte stream could not be opened as a
	// document at all. No partial result exists.
	ErrMalformedDocument = errors.New("document cannot be opened")

	// ErrEmptyContent is advisory: extraction ran to completion but every
	// page came back without text and without an image. The Document
	// returned alongside it is still valid.
	ErrEmptyContent = errors.New("document produced no extractable content")
)

// CheckDeclaredType validates the upload's declared type. Content sniffing is
// deliberately not done here; a lying extension surfaces later as a malformed
// document.
func CheckDeclaredType(fileName, contentType string) error {
	if strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(contentType), "application/pdf") {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidFileType, fileName)
}

// DocumentExtractor turns raw PDF bytes into a Document: per-page
// reading-order text plus a per-page raster.
type DocumentExtractor struct {
	source   FragmentSource
	renderer PageRenderer
	logger   logger.ILogger
}

// NewDocumentExtractor wires the extractor. renderer may be nil; extraction
// then produces text-only pages.
func NewDocumentExtractor(source FragmentSource, renderer PageRenderer, log logger.ILogger) *DocumentExtractor {
	return &DocumentExtractor{
		source:   source,
		renderer: renderer,
		logger:   log,
	}
}

// Extract processes every page in order, first to last. The loop is
// intentionally sequential: the render surface is shared across pages and the
// reader's page objects are not assumed independent.
//
// Returns ErrMalformedDocument when the bytes cannot be opened, and
// (Document, ErrEmptyContent) when extraction succeeded mechanically but
// found neither text nor images.
func (e *DocumentExtractor) Extract(ctx context.Context, data []byte) (*Document, error) {
	// 1. Open the fragment reader. Failure here fails the whole operation.
	fragDoc, err := e.source.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	defer fragDoc.Close()

	pageCount, err := fragDoc.PageCount()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	// 2. Open the render surface. A missing or failing surface is a
	// degraded success: pages still get their text.
	var session RenderSession
	if e.renderer != nil {
		session, err = e.renderer.Open(data)
		if err != nil {
			e.logger.Warn("Extractor", "No render surface available, continuing text-only", map[string]interface{}{"error": err.Error()})
			session = nil
		} else {
			defer session.Close()
		}
	}

	// 3. Walk pages in order.
	doc := &Document{Pages: make([]Page, 0, pageCount)}
	for i := 0; i < pageCount; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fragments, err := fragDoc.PageFragments(i)
		if err != nil {
			// Best effort: a page whose content stream cannot be decoded
			// becomes an empty-text page rather than failing the document.
			e.logger.Warn("Extractor", "Failed to read page fragments", map[string]interface{}{"page": i + 1, "error": err.Error()})
			fragments = nil
		}

		var image []byte
		if session != nil {
			image, err = session.Render(i)
			if err != nil {
				e.logger.Warn("Extractor", "Failed to render page", map[string]interface{}{"page": i + 1, "error": err.Error()})
				image = nil
			}
		}

		doc.Pages = append(doc.Pages, Page{
			Index: i + 1,
			Text:  ReconstructPageText(fragments),
			Image: image,
		})
	}

	// 4. Classify the empty-content condition. The caller can warn the user
	// but is free to continue.
	if doc.IsEmpty() {
		return doc, ErrEmptyContent
	}

	return doc, nil
}
