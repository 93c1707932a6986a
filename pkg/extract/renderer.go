package extract

// PageRenderer is the rasterization capability the extractor depends on. It
// is optional: when unavailable the extractor degrades to text-only output.
type PageRenderer interface {
	// Open prepares a render session for one document. The session owns a
	// single drawing surface that is reused for every page and released by
	// Close.
	Open(data []byte) (RenderSession, error)
}

// RenderSession renders the pages of one opened document.
type RenderSession interface {
	PageCount() int

	// Render rasterizes the page at the given 0-based index and returns it
	// as PNG bytes.
	Render(pageIndex int) ([]byte, error)

	Close() error
}
