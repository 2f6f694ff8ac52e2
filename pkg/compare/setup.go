package compare

import (
	"context"
	"fmt"

	"github.com/xhad/docsim/internal/models"
	"github.com/xhad/docsim/internal/types"
	"github.com/xhad/docsim/pkg/config"
	"github.com/xhad/docsim/pkg/extractor"
	"github.com/xhad/docsim/pkg/processor"
	"github.com/xhad/docsim/pkg/report"
	"github.com/xhad/docsim/pkg/runner"
	"github.com/xhad/docsim/pkg/similarity"
	"github.com/xhad/docsim/pkg/scanner"
	"github.com/xhad/docsim/pkg/store"
)

// FromConfig assembles a pipeline from a validated configuration. The
// returned cleanup function must be called once the pipeline is done.
func FromConfig(ctx context.Context, cfg *config.Config, onProgress func(completed, total int)) (*Pipeline, func(), error) {
	if err := cfg.Check(); err != nil {
		return nil, nil, err
	}

	var ext types.Extractor = extractor.NewWithConfig(extractor.ExtractorConfig{
		ContentSelectors: cfg.Extractor.ContentSelectors,
	})
	if cfg.Extractor.CacheSize > 0 {
		cached, err := extractor.NewCached(ext, cfg.Extractor.CacheSize)
		if err != nil {
			return nil, nil, err
		}
		ext = cached
	}

	scorer := similarity.NewTFIDF(processor.NewWithConfig(processor.ProcessorConfig{
		RemoveStopwords: cfg.Processor.RemoveStopwords,
		CustomStopwords: cfg.Processor.CustomStopwords,
	}))

	fileSink, err := report.NewFileSink(cfg.Report.Output)
	if err != nil {
		return nil, nil, config.NewConfigError(err)
	}

	// The database goes first: its run can be deleted again if the file
	// cannot be written, while a replaced file cannot be restored.
	var sinks []report.Sink
	cleanup := func() {}

	if cfg.Database.URL != "" {
		rs, err := store.NewWithConfig(ctx, store.ReportStoreConfig{
			ConnString: cfg.Database.URL,
			TableName:  cfg.Database.TableName,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize report store: %w", err)
		}
		sinks = append(sinks, rs)
		cleanup = rs.Close
	}
	sinks = append(sinks, fileSink)

	pipeline := NewWithConfig(PipelineConfig{
		Ours: scanner.NewWithConfig(scanner.ScannerConfig{
			Dir:               cfg.Compare.Ours.Dir,
			AllowedExtensions: cfg.Compare.Ours.Extensions,
			IgnorePatterns:    cfg.Compare.IgnorePatterns,
		}),
		Theirs: scanner.NewWithConfig(scanner.ScannerConfig{
			Dir:               cfg.Compare.Theirs.Dir,
			AllowedExtensions: cfg.Compare.Theirs.Extensions,
			IgnorePatterns:    cfg.Compare.IgnorePatterns,
		}),
		Runner: runner.RunnerConfig{
			Workers:     cfg.Compare.Workers,
			TaskTimeout: cfg.Compare.TaskTimeout,
			OnProgress:  onProgress,
		},
		Sinks: sinks,
	}, ext, scorer)

	return pipeline, cleanup, nil
}

// OnDiscovered registers a callback run once both collections are scanned.
func (p *Pipeline) OnDiscovered(fn func(ours, theirs []models.DocumentRef)) {
	p.config.OnDiscovered = fn
}
