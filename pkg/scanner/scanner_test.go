package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/docsim/internal/models"
)

func TestShouldProcessFile(t *testing.T) {
	s := NewWithConfig(ScannerConfig{
		Dir:               "/docs",
		IgnorePatterns:    []string{"~$", "draft"},
		AllowedExtensions: []string{".DOCX", ".pdf"},
	})

	tests := []struct {
		name     string
		expected bool
	}{
		{"contract.docx", true},
		{"Contract.DOCX", true},
		{"policy.pdf", true},
		{"~$contract.docx", false},
		{"draft-policy.pdf", false},
		{"notes.txt", false},
		{"docx", false},
		{"archive.docx.bak", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.shouldProcessFile(tt.name))
		})
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.docx", "a.docx", "c.pdf", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.docx"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested.docx", "inner.docx"), []byte("x"), 0644))

	s := NewWithConfig(ScannerConfig{
		Dir:               dir,
		AllowedExtensions: []string{".docx"},
	})

	docs, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "a.docx", docs[0].Name)
	assert.Equal(t, filepath.Join(dir, "a.docx"), docs[0].Path)
	assert.Equal(t, models.FormatDocx, docs[0].Format)
	assert.Equal(t, "b.docx", docs[1].Name)
}

func TestScan_MissingFolder(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), ".pdf").Scan()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScan_NoMatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644))

	docs, err := New(dir, ".pdf").Scan()
	require.NoError(t, err)
	assert.Empty(t, docs)
}
