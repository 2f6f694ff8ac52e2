package extractor_test

import (
	"archive/zip"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/docsim/internal/models"
	"github.com/xhad/docsim/pkg/extractor"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Service Agreement</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">The parties </w:t></w:r><w:r><w:t>agree</w:t></w:r></w:p>
    <w:p/>
    <w:p><w:r><w:t>Term</w:t><w:tab/><w:t>one year</w:t><w:br/><w:t>renewable</w:t></w:r></w:p>
  </w:body>
</w:document>`

func writeDocx(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for entry, body := range entries {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestExtract_Docx(t *testing.T) {
	path := writeDocx(t, t.TempDir(), "agreement.docx", map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   documentXML,
	})

	text, err := extractor.New().Extract(models.NewDocumentRef(path))
	require.NoError(t, err)

	assert.Equal(t, "Service Agreement\nThe parties agree\n\nTerm\tone year\nrenewable", text)
}

func TestExtract_DocxMissingBody(t *testing.T) {
	path := writeDocx(t, t.TempDir(), "empty.docx", map[string]string{
		"[Content_Types].xml": `<Types/>`,
	})

	_, err := extractor.New().Extract(models.NewDocumentRef(path))

	var extErr *extractor.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, models.FormatDocx, extErr.Format)
	assert.Contains(t, err.Error(), "word/document.xml not found")
}

func TestExtract_DocxCorruptXML(t *testing.T) {
	path := writeDocx(t, t.TempDir(), "broken.docx", map[string]string{
		"word/document.xml": `<w:document><w:body><w:p><w:t>half`,
	})

	_, err := extractor.New().Extract(models.NewDocumentRef(path))

	var extErr *extractor.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, path, extErr.Path)
}

func TestExtract_PDF(t *testing.T) {
	doc := models.NewDocumentRef(filepath.Join("testdata", "two_pages.pdf"))
	require.Equal(t, models.FormatPDF, doc.Format)

	text, err := extractor.New().Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "cat dog\nbird fish", text)
}

func TestExtract_PDFMissingPage(t *testing.T) {
	// The page tree claims two pages but holds one.
	path := filepath.Join("testdata", "missing_page.pdf")

	text, err := extractor.New().Extract(models.NewDocumentRef(path))
	assert.Empty(t, text)

	var extErr *extractor.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, models.FormatPDF, extErr.Format)
	assert.Contains(t, err.Error(), "page 2")
}

func TestExtract_Errors(t *testing.T) {
	dir := t.TempDir()

	notZip := filepath.Join(dir, "plain.docx")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip archive"), 0644))

	notPDF := filepath.Join(dir, "corrupt.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("%PDF-1.4\ngarbage without trailer"), 0644))

	unknown := filepath.Join(dir, "sheet.xls")
	require.NoError(t, os.WriteFile(unknown, []byte("data"), 0644))

	tests := []struct {
		name     string
		path     string
		notExist bool
	}{
		{"missing docx", filepath.Join(dir, "missing.docx"), true},
		{"missing pdf", filepath.Join(dir, "missing.pdf"), true},
		{"missing html", filepath.Join(dir, "missing.html"), true},
		{"missing text", filepath.Join(dir, "missing.txt"), true},
		{"docx that is not a zip", notZip, false},
		{"corrupt pdf", notPDF, false},
		{"unsupported format", unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := extractor.New().Extract(models.NewDocumentRef(tt.path))
			assert.Empty(t, text)

			var extErr *extractor.ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, tt.path, extErr.Path)
			if tt.notExist {
				assert.True(t, errors.Is(err, fs.ErrNotExist), err.Error())
			}
		})
	}
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := extractor.New().Extract(models.DocumentRef{Name: "x", Path: "/x"})
	assert.ErrorIs(t, err, extractor.ErrUnsupportedFormat)
}

func TestExtract_HTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`
		<html>
			<head><title>Ignored</title><style>body { color: red }</style></head>
			<body>
				<nav>Menu</nav>
				<main>
					<h1>Privacy</h1>
					<p>We   collect
					data.</p>
				</main>
			</body>
		</html>`), 0644))

	text, err := extractor.New().Extract(models.NewDocumentRef(path))
	require.NoError(t, err)
	assert.Equal(t, "Privacy We collect data.", text)
}

func TestExtract_HTMLBodyFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.htm")
	require.NoError(t, os.WriteFile(path, []byte(`<html><body><p>Just a body</p><script>var x = 1;</script></body></html>`), 0644))

	text, err := extractor.New().Extract(models.NewDocumentRef(path))
	require.NoError(t, err)
	assert.Equal(t, "Just a body", text)
}

func TestExtract_Text(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("cat dog\xff\n"), 0644))

	text, err := extractor.New().Extract(models.NewDocumentRef(path))
	require.NoError(t, err)
	assert.Equal(t, "cat dog\n", text)
}

type countingExtractor struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingExtractor) Extract(doc models.DocumentRef) (string, error) {
	c.calls.Add(1)
	if c.fail {
		return "", &extractor.ExtractionError{Path: doc.Path, Format: doc.Format, Err: errors.New("boom")}
	}
	return "text of " + doc.Name, nil
}

func TestCached_ReusesText(t *testing.T) {
	next := &countingExtractor{}
	cached, err := extractor.NewCached(next, 8)
	require.NoError(t, err)

	doc := models.NewDocumentRef("/docs/a.pdf")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := cached.Extract(doc)
			assert.NoError(t, err)
			assert.Equal(t, "text of a.pdf", text)
		}()
	}
	wg.Wait()

	text, err := cached.Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "text of a.pdf", text)
	assert.LessOrEqual(t, next.calls.Load(), int32(16))
	assert.Equal(t, 1, cached.Len())

	before := next.calls.Load()
	_, err = cached.Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, before, next.calls.Load())
}

func TestCached_DoesNotCacheFailures(t *testing.T) {
	next := &countingExtractor{fail: true}
	cached, err := extractor.NewCached(next, 8)
	require.NoError(t, err)

	doc := models.NewDocumentRef("/docs/bad.pdf")
	for i := 0; i < 3; i++ {
		_, err := cached.Extract(doc)
		var extErr *extractor.ExtractionError
		require.ErrorAs(t, err, &extErr)
	}

	assert.Equal(t, int32(3), next.calls.Load())
	assert.Equal(t, 0, cached.Len())
}

func TestNewCached_InvalidSize(t *testing.T) {
	_, err := extractor.NewCached(&countingExtractor{}, 0)
	assert.Error(t, err)
}
