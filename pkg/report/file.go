package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedOutput = errors.New("unsupported report file type")

// NewFileSink returns the sink for path based on its extension.
func NewFileSink(path string) (Sink, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return NewXLSX(path), nil
	case ".csv":
		return NewCSV(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOutput, path)
	}
}

// reportFileMode is the mode of written reports. Temporary files start out
// private, so it is set before they are renamed into place.
const reportFileMode os.FileMode = 0o644

// Discarder is implemented by sinks that can take back a report they wrote.
// It is used when a later sink of the same run fails.
type Discarder interface {
	Discard(ctx context.Context) error
}

// stageFile creates a temporary file next to path and lets write fill it.
// The caller renames the returned file into place or removes it. On error
// nothing is left behind.
func stageFile(path string, write func(tmp string) error) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*"+filepath.Ext(path))
	if err != nil {
		return "", err
	}
	tmp := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}

	if err := write(tmp); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Chmod(tmp, reportFileMode); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}

// writeAtomic stages a file for path and renames it over path. On any error
// path is left untouched.
func writeAtomic(path string, write func(tmp string) error) error {
	tmp, err := stageFile(path, write)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
