package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xhad/docsim/internal/models"
)

type ScannerConfig struct {
	Dir               string
	AllowedExtensions []string
	IgnorePatterns    []string
}

// Scanner lists the documents of one folder. Subfolders are not visited.
type Scanner struct {
	config ScannerConfig
}

func NewWithConfig(config ScannerConfig) *Scanner {
	if len(config.AllowedExtensions) == 0 {
		config.AllowedExtensions = []string{".docx"}
	}
	extensions := make([]string, len(config.AllowedExtensions))
	for i, ext := range config.AllowedExtensions {
		extensions[i] = strings.ToLower(ext)
	}
	config.AllowedExtensions = extensions
	return &Scanner{config: config}
}

func New(dir string, extensions ...string) *Scanner {
	return NewWithConfig(ScannerConfig{
		Dir:               dir,
		AllowedExtensions: extensions,
	})
}

func (s *Scanner) Dir() string {
	return s.config.Dir
}

func (s *Scanner) shouldProcessFile(name string) bool {
	// Check extensions
	ext := strings.ToLower(filepath.Ext(name))
	validExt := false
	for _, allowedExt := range s.config.AllowedExtensions {
		if ext == allowedExt {
			validExt = true
			break
		}
	}
	if !validExt {
		return false
	}

	// Check ignore patterns
	for _, pattern := range s.config.IgnorePatterns {
		if strings.Contains(name, pattern) {
			return false
		}
	}

	return true
}

// Scan returns the matching documents sorted by file name.
func (s *Scanner) Scan() ([]models.DocumentRef, error) {
	entries, err := os.ReadDir(s.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", s.config.Dir, err)
	}

	var documents []models.DocumentRef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !s.shouldProcessFile(entry.Name()) {
			continue
		}

		documents = append(documents, models.NewDocumentRef(filepath.Join(s.config.Dir, entry.Name())))
	}

	return documents, nil
}
