package models

import (
	"path/filepath"
	"strings"
)

// Format is the declared document format of a file, derived from its extension.
type Format int

const (
	FormatUnknown Format = iota
	FormatDocx
	FormatPDF
	FormatHTML
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatDocx:
		return "docx"
	case FormatPDF:
		return "pdf"
	case FormatHTML:
		return "html"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// FormatForExtension maps a file extension (with the leading dot) to a Format.
func FormatForExtension(ext string) Format {
	switch strings.ToLower(ext) {
	case ".docx":
		return FormatDocx
	case ".pdf":
		return FormatPDF
	case ".html", ".htm":
		return FormatHTML
	case ".txt", ".md":
		return FormatText
	default:
		return FormatUnknown
	}
}

// DocumentRef points at one discovered file. It is never mutated after discovery.
type DocumentRef struct {
	Name   string
	Path   string
	Format Format
}

func NewDocumentRef(path string) DocumentRef {
	return DocumentRef{
		Name:   filepath.Base(path),
		Path:   path,
		Format: FormatForExtension(filepath.Ext(path)),
	}
}

// ComparisonTask is one (ours, theirs) pairing. Seq is its row-major
// enumeration index and is used to break ties in the report.
type ComparisonTask struct {
	Seq   int
	Left  DocumentRef
	Right DocumentRef
}

type ComparisonResult struct {
	Seq        int
	LeftName   string
	RightName  string
	Similarity float64
}
