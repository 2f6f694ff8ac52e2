package report

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"strings"
)

// CSV writes the report as comma-separated values. Failed pairs are written
// to <name>.errors.csv next to the report.
type CSV struct {
	path string
}

func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

func (c *CSV) Path() string {
	return c.path
}

func (c *CSV) ErrorsPath() string {
	return strings.TrimSuffix(c.path, ".csv") + ".errors.csv"
}

func (c *CSV) Write(ctx context.Context, r *Report) error {
	if err := ctx.Err(); err != nil {
		return &SinkError{Target: c.path, Err: err}
	}

	rows := make([][]string, 0, len(r.Results)+1)
	rows = append(rows, Columns)
	for _, res := range r.Results {
		rows = append(rows, []string{
			res.LeftName,
			res.RightName,
			strconv.FormatFloat(res.Similarity, 'f', -1, 64),
		})
	}

	reportTmp, err := stageFile(c.path, func(tmp string) error {
		return writeCSV(tmp, rows)
	})
	if err != nil {
		return &SinkError{Target: c.path, Err: err}
	}

	// The errors file goes in first so a report never appears without it.
	errPath := c.ErrorsPath()
	if len(r.Failures) > 0 {
		errRows := append([][]string{ErrorColumns}, r.failureRows()...)
		if err := writeAtomic(errPath, func(tmp string) error {
			return writeCSV(tmp, errRows)
		}); err != nil {
			os.Remove(reportTmp)
			return &SinkError{Target: errPath, Err: err}
		}
	}

	if err := os.Rename(reportTmp, c.path); err != nil {
		os.Remove(reportTmp)
		if len(r.Failures) > 0 {
			os.Remove(errPath)
		}
		return &SinkError{Target: c.path, Err: err}
	}

	if len(r.Failures) == 0 {
		// A stale errors file from an earlier run would contradict this report.
		if err := removeIfExists(errPath); err != nil {
			os.Remove(c.path)
			return &SinkError{Target: errPath, Err: err}
		}
	}
	return nil
}

// Discard removes the report and its errors file.
func (c *CSV) Discard(ctx context.Context) error {
	return errors.Join(removeIfExists(c.path), removeIfExists(c.ErrorsPath()))
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
