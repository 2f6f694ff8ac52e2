package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/xhad/docsim/internal/models"
	"github.com/xhad/docsim/pkg/compare"
	cfgPkg "github.com/xhad/docsim/pkg/config"
	"github.com/xhad/docsim/pkg/report"
	"github.com/xhad/docsim/pkg/store"
)

// topMatches is how many of the best pairs are echoed to the console.
const topMatches = 5

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("pairs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(!color.NoColor),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// progressReporter prints one line per finished pair, or drives a progress
// bar when enabled. It is only called from the collecting goroutine.
type progressReporter struct {
	useBar bool
	bar    *progressbar.ProgressBar
}

func (p *progressReporter) update(completed, total int) {
	if !p.useBar {
		fmt.Printf("Compared %d of %d document pairs\n", completed, total)
		return
	}

	if p.bar == nil {
		p.bar = getProgressBar(total, "Comparing documents")
	}
	_ = p.bar.Set(completed)
	if completed == total {
		_ = p.bar.Finish()
		fmt.Println()
	}
}

func run(ctx context.Context, config *cfgPkg.Config) error {
	if config.UI.NoColor {
		color.NoColor = true
	}

	progress := &progressReporter{useBar: config.UI.ProgressBar}

	pipeline, cleanup, err := compare.FromConfig(ctx, config, progress.update)
	if err != nil {
		return err
	}
	defer cleanup()

	pipeline.OnDiscovered(func(ours, theirs []models.DocumentRef) {
		color.Blue("Comparing %d of our documents with %d of theirs (%d pairs)",
			len(ours), len(theirs), len(ours)*len(theirs))
	})

	rep, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	printBestMatches(ctx, config, rep)

	if !rep.Complete() {
		color.Yellow("\n%d of %d pairs could not be compared:", len(rep.Failures), rep.Total)
		for _, f := range rep.Failures {
			color.Yellow("  %v", &f)
		}
	}

	if ctx.Err() != nil {
		color.Yellow("Comparison was interrupted; the report holds the pairs finished so far")
	}

	color.Green("Document similarity report saved as '%s'", config.Report.Output)

	return nil
}

// printBestMatches echoes the top pairs. With a database configured they are
// read back from the stored run, which confirms the run was saved.
func printBestMatches(ctx context.Context, config *cfgPkg.Config, rep *report.Report) {
	if len(rep.Results) == 0 {
		return
	}

	if config.Database.URL != "" && ctx.Err() == nil {
		stored, runID, err := storedMatches(ctx, config)
		if err == nil {
			color.Cyan("\nBest matches (run %d in table '%s'):", runID, config.Database.TableName)
			for _, r := range stored {
				fmt.Printf("  %.4f  %s  <->  %s\n", r.Similarity, r.OurDocument, r.TheirDocument)
			}
			return
		}
		color.Yellow("Could not read back stored results: %v", err)
	}

	color.Cyan("\nBest matches:")
	for i, r := range rep.Results {
		if i == topMatches {
			break
		}
		fmt.Printf("  %.4f  %s  <->  %s\n", r.Similarity, r.LeftName, r.RightName)
	}
}

func storedMatches(ctx context.Context, config *cfgPkg.Config) ([]store.StoredResult, int64, error) {
	rs, err := store.NewWithConfig(ctx, store.ReportStoreConfig{
		ConnString: config.Database.URL,
		TableName:  config.Database.TableName,
	})
	if err != nil {
		return nil, 0, err
	}
	defer rs.Close()

	runID, err := rs.LatestRun(ctx)
	if err != nil {
		return nil, 0, err
	}
	results, err := rs.Ranked(ctx, runID, topMatches)
	if err != nil {
		return nil, 0, err
	}
	return results, runID, nil
}
