package extract

import (
	"fmt"
	"os"

	"github.com/tsawler/tabula/reader"
)

// FragmentSource yields the positioned text fragments of each page of a
// document.
type FragmentSource interface {
	Open(data []byte) (FragmentDocument, error)
}

// FragmentDocument is one opened document's fragment view.
type FragmentDocument interface {
	PageCount() (int, error)

	// PageFragments returns the unordered fragments of the page at the
	// given 0-based index.
	PageFragments(pageIndex int) ([]TextFragment, error)

	Close() error
}

// TabulaSource reads fragments through the tabula PDF reader.
type TabulaSource struct{}

func NewTabulaSource() *TabulaSource {
	return &TabulaSource{}
}

func (s *TabulaSource) Open(data []byte) (FragmentDocument, error) {
	// tabula reads from a file handle, so spool the upload to a temp file
	// that lives as long as the document is open.
	tmp, err := os.CreateTemp("", "examgen-doc-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	r, err := reader.Open(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	return &tabulaDocument{reader: r, tmpPath: tmpPath}, nil
}

type tabulaDocument struct {
	reader  *reader.Reader
	tmpPath string
}

func (d *tabulaDocument) PageCount() (int, error) {
	return d.reader.PageCount()
}

func (d *tabulaDocument) PageFragments(pageIndex int) ([]TextFragment, error) {
	page, err := d.reader.GetPage(pageIndex)
	if err != nil {
		return nil, fmt.Errorf("get page %d: %w", pageIndex+1, err)
	}

	raw, err := d.reader.ExtractTextFragments(page)
	if err != nil {
		return nil, fmt.Errorf("extract fragments of page %d: %w", pageIndex+1, err)
	}

	fragments := make([]TextFragment, len(raw))
	for i, f := range raw {
		fragments[i] = TextFragment{
			Content: f.Text,
			OriginX: f.X,
			OriginY: f.Y,
		}
	}
	return fragments, nil
}

func (d *tabulaDocument) Close() error {
	err := d.reader.Close()
	os.Remove(d.tmpPath)
	return err
}
