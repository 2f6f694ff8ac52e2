package extractor

import (
	"errors"
	"fmt"

	"github.com/xhad/docsim/internal/models"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

// ExtractionError reports a document whose text could not be read: missing,
// unreadable, corrupt, encrypted or of an unsupported format.
type ExtractionError struct {
	Path   string
	Format models.Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s text from %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

type ExtractorConfig struct {
	// ContentSelectors are tried in order to find the main content of an
	// HTML document; the body is used when none match.
	ContentSelectors []string
}

// Extractor turns a document into plain text, choosing the strategy by its format.
type Extractor struct {
	config ExtractorConfig
}

func NewWithConfig(config ExtractorConfig) *Extractor {
	if len(config.ContentSelectors) == 0 {
		config.ContentSelectors = []string{
			"main",
			"article",
			".content",
			"#content",
			".documentation",
			"#documentation",
		}
	}
	return &Extractor{config: config}
}

func New() *Extractor {
	return NewWithConfig(ExtractorConfig{})
}

// Extract returns the text of doc. Sub-units (paragraphs, pages) are joined
// with newlines in document order. Any failure is an *ExtractionError.
func (e *Extractor) Extract(doc models.DocumentRef) (string, error) {
	var (
		text string
		err  error
	)

	switch doc.Format {
	case models.FormatDocx:
		text, err = extractDocx(doc.Path)
	case models.FormatPDF:
		text, err = extractPDF(doc.Path)
	case models.FormatHTML:
		text, err = e.extractHTML(doc.Path)
	case models.FormatText:
		text, err = extractText(doc.Path)
	default:
		err = ErrUnsupportedFormat
	}

	if err != nil {
		return "", &ExtractionError{Path: doc.Path, Format: doc.Format, Err: err}
	}
	return text, nil
}
