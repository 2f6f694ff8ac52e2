// Package compare wires the pipeline together: it discovers both document
// collections, compares every pair on the worker pool, ranks the results and
// hands the report to the configured sinks.
package compare

import (
	"context"
	"errors"
	"fmt"

	"github.com/xhad/docsim/internal/models"
	"github.com/xhad/docsim/internal/types"
	"github.com/xhad/docsim/pkg/config"
	"github.com/xhad/docsim/pkg/pairs"
	"github.com/xhad/docsim/pkg/report"
	"github.com/xhad/docsim/pkg/runner"
	"github.com/xhad/docsim/pkg/scanner"
)

type PipelineConfig struct {
	Ours   *scanner.Scanner
	Theirs *scanner.Scanner
	Runner runner.RunnerConfig
	Sinks  []report.Sink
	// OnDiscovered is called once both collections are known, before any
	// comparison starts.
	OnDiscovered func(ours, theirs []models.DocumentRef)
}

type Pipeline struct {
	config    PipelineConfig
	extractor types.Extractor
	scorer    types.Scorer
}

func NewWithConfig(config PipelineConfig, extractor types.Extractor, scorer types.Scorer) *Pipeline {
	return &Pipeline{
		config:    config,
		extractor: extractor,
		scorer:    scorer,
	}
}

// Run executes one comparison. It fails with a *config.ConfigError if a
// folder cannot be read or holds no matching documents, and with a
// *report.SinkError if any sink fails, in which case the output of the sinks
// written before it is discarded. Pairs that fail to
// compare are listed in the report's Failures.
func (p *Pipeline) Run(ctx context.Context) (*report.Report, error) {
	ours, err := discover("ours", p.config.Ours)
	if err != nil {
		return nil, err
	}
	theirs, err := discover("theirs", p.config.Theirs)
	if err != nil {
		return nil, err
	}

	if p.config.OnDiscovered != nil {
		p.config.OnDiscovered(ours, theirs)
	}

	tasks := pairs.New(ours, theirs)
	outcomes := runner.NewWithConfig(p.config.Runner, p.extractor, p.scorer).Run(ctx, tasks)

	rep := report.Build(outcomes)
	rep.OursDir = p.config.Ours.Dir()
	rep.TheirsDir = p.config.Theirs.Dir()

	// An interrupted run still gets its report; unstarted pairs are listed
	// as cancelled.
	sinkCtx := context.WithoutCancel(ctx)
	for i, sink := range p.config.Sinks {
		if err := sink.Write(sinkCtx, rep); err != nil {
			var sinkErr *report.SinkError
			if !errors.As(err, &sinkErr) {
				err = &report.SinkError{Target: fmt.Sprintf("%T", sink), Err: err}
			}
			return nil, errors.Join(err, discard(sinkCtx, p.config.Sinks[:i]))
		}
	}

	return rep, nil
}

// discard takes back what the given sinks wrote, so a failed run leaves no
// report behind.
func discard(ctx context.Context, sinks []report.Sink) error {
	var errs []error
	for _, sink := range sinks {
		d, ok := sink.(report.Discarder)
		if !ok {
			continue
		}
		if err := d.Discard(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to discard %T output: %w", sink, err))
		}
	}
	return errors.Join(errs...)
}

func discover(side string, s *scanner.Scanner) ([]models.DocumentRef, error) {
	if s == nil {
		return nil, config.NewConfigError(fmt.Errorf("no folder configured for %s documents", side))
	}

	docs, err := s.Scan()
	if err != nil {
		return nil, config.NewConfigError(err)
	}
	if len(docs) == 0 {
		return nil, config.NewConfigError(fmt.Errorf("no matching documents found in %s folder %s", side, s.Dir()))
	}
	return docs, nil
}
