package report

import (
	"context"
	"fmt"
	"slices"

	"github.com/xhad/docsim/internal/models"
	"github.com/xhad/docsim/pkg/runner"
)

var (
	Columns      = []string{"Our Document", "Their Document", "Similarity"}
	ErrorColumns = []string{"Our Document", "Their Document", "Stage", "Error"}
)

// Report is the ranked outcome of a comparison run.
type Report struct {
	OursDir   string
	TheirsDir string
	// Results are sorted by similarity, highest first; equal scores keep
	// enumeration order.
	Results []models.ComparisonResult
	// Failures are the pairs that could not be compared, in enumeration order.
	Failures []runner.TaskError
	Total    int
}

// Sink persists a report.
type Sink interface {
	Write(ctx context.Context, r *Report) error
}

// SinkError reports a failure to persist a report. When it is returned no
// partial output is left in place of the report.
type SinkError struct {
	Target string
	Err    error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("failed to write report to %s: %v", e.Target, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// Build orders outcomes into a Report. It does not modify outcomes.
func Build(outcomes []runner.Outcome) *Report {
	r := &Report{Total: len(outcomes)}

	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			r.Failures = append(r.Failures, *o.Err)
		case o.Result != nil:
			r.Results = append(r.Results, *o.Result)
		}
	}

	slices.SortStableFunc(r.Results, func(a, b models.ComparisonResult) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		default:
			return a.Seq - b.Seq
		}
	})
	slices.SortFunc(r.Failures, func(a, b runner.TaskError) int {
		return a.Seq - b.Seq
	})

	return r
}

func (r *Report) Complete() bool {
	return len(r.Failures) == 0 && len(r.Results) == r.Total
}

func (r *Report) failureRows() [][]string {
	rows := make([][]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		rows = append(rows, []string{f.LeftName, f.RightName, string(f.Stage), msg})
	}
	return rows
}
