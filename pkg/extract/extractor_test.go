package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ai-examgen-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

// fakeSource serves canned fragments per page.
type fakeSource struct {
	pages   [][]TextFragment
	openErr error
}

func (s *fakeSource) Open(data []byte) (FragmentDocument, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &fakeFragmentDoc{pages: s.pages}, nil
}

type fakeFragmentDoc struct {
	pages  [][]TextFragment
	closed bool
}

func (d *fakeFragmentDoc) PageCount() (int, error) { return len(d.pages), nil }
func (d *fakeFragmentDoc) PageFragments(i int) ([]TextFragment, error) {
	return d.pages[i], nil
}
func (d *fakeFragmentDoc) Close() error {
	d.closed = true
	return nil
}

// fakeRenderer renders a tiny deterministic payload per page.
type fakeRenderer struct {
	openErr   error
	renderErr error
	pageCount int
}

func (r *fakeRenderer) Open(data []byte) (RenderSession, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}
	return &fakeRenderSession{renderErr: r.renderErr, pageCount: r.pageCount}, nil
}

type fakeRenderSession struct {
	renderErr error
	pageCount int
	closed    bool
}

func (s *fakeRenderSession) PageCount() int { return s.pageCount }
func (s *fakeRenderSession) Render(i int) ([]byte, error) {
	if s.renderErr != nil {
		return nil, s.renderErr
	}
	return []byte(fmt.Sprintf("png-%d", i+1)), nil
}
func (s *fakeRenderSession) Close() error {
	s.closed = true
	return nil
}

func TestExtract_MalformedDocumentFailsWhole(t *testing.T) {
	source := &fakeSource{openErr: errors.New("bad xref table")}
	extractor := NewDocumentExtractor(source, &fakeRenderer{}, nopLogger{})

	doc, err := extractor.Extract(context.Background(), []byte("not a pdf"))

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestExtract_PagesKeepOrderAndOneBasedIndex(t *testing.T) {
	source := &fakeSource{pages: [][]TextFragment{
		{{Content: "halaman satu", OriginY: 700}},
		{{Content: "halaman dua", OriginY: 700}},
		{{Content: "halaman tiga", OriginY: 700}},
	}}
	extractor := NewDocumentExtractor(source, &fakeRenderer{pageCount: 3}, nopLogger{})

	doc, err := extractor.Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 3)

	for i, page := range doc.Pages {
		assert.Equal(t, i+1, page.Index)
		assert.Equal(t, []byte(fmt.Sprintf("png-%d", i+1)), page.Image)
	}
	assert.Equal(t, "halaman satu\n\nhalaman dua\n\nhalaman tiga", doc.CombinedText())
}

func TestExtract_NoRenderSurfaceIsDegradedSuccess(t *testing.T) {
	source := &fakeSource{pages: [][]TextFragment{
		{{Content: "teks saja", OriginY: 500}},
	}}

	tests := []struct {
		name     string
		renderer PageRenderer
	}{
		{name: "nil renderer", renderer: nil},
		{name: "surface open fails", renderer: &fakeRenderer{openErr: errors.New("no mupdf")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewDocumentExtractor(source, tt.renderer, nopLogger{})
			doc, err := extractor.Extract(context.Background(), []byte("%PDF"))

			require.NoError(t, err)
			require.Len(t, doc.Pages, 1)
			assert.Equal(t, "teks saja", doc.Pages[0].Text)
			assert.Empty(t, doc.Pages[0].Image)
		})
	}
}

func TestExtract_EmptyContentIsAdvisory(t *testing.T) {
	source := &fakeSource{pages: [][]TextFragment{
		{{Content: "   ", OriginY: 100}},
		nil,
	}}
	extractor := NewDocumentExtractor(source, nil, nopLogger{})

	doc, err := extractor.Extract(context.Background(), []byte("%PDF"))

	// The document itself is still returned and complete.
	assert.ErrorIs(t, err, ErrEmptyContent)
	require.NotNil(t, doc)
	assert.Len(t, doc.Pages, 2)
	assert.True(t, doc.IsEmpty())
}

func TestExtract_RenderFailureKeepsText(t *testing.T) {
	source := &fakeSource{pages: [][]TextFragment{
		{{Content: "isi", OriginY: 300}},
	}}
	extractor := NewDocumentExtractor(source, &fakeRenderer{renderErr: errors.New("draw failed"), pageCount: 1}, nopLogger{})

	doc, err := extractor.Extract(context.Background(), []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, "isi", doc.Pages[0].Text)
	assert.Empty(t, doc.Pages[0].Image)
}

func TestExtract_ContextCancelStopsLoop(t *testing.T) {
	source := &fakeSource{pages: [][]TextFragment{
		{{Content: "a", OriginY: 1}},
		{{Content: "b", OriginY: 1}},
	}}
	extractor := NewDocumentExtractor(source, nil, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := extractor.Extract(ctx, []byte("%PDF"))
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckDeclaredType(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		wantErr     bool
	}{
		{name: "pdf extension", fileName: "soal_ujian.pdf", wantErr: false},
		{name: "uppercase extension", fileName: "MATERI.PDF", wantErr: false},
		{name: "pdf content type", fileName: "upload", contentType: "application/pdf", wantErr: false},
		{name: "word document", fileName: "soal.docx", contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", wantErr: true},
		{name: "image", fileName: "scan.jpg", contentType: "image/jpeg", wantErr: true},
		{name: "no hints", fileName: "file.bin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDeclaredType(tt.fileName, tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFileType)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
