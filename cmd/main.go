package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	cfgPkg "github.com/xhad/docsim/pkg/config"
)

func main() {
	config, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config); err != nil {
		stop()
		fail(err)
	}
}

func fail(err error) {
	color.Red("Error: %v", err)
	os.Exit(1)
}

// parseFlags loads the config file and lets command line flags override it.
func parseFlags(args []string) (*cfgPkg.Config, error) {
	fs := flag.NewFlagSet("docsim", flag.ContinueOnError)

	var (
		configPath  string
		oursDir     string
		theirsDir   string
		oursExt     string
		theirsExt   string
		output      string
		workers     int
		taskTimeout time.Duration
		dbURL       string
		progressBar bool
		noColor     bool
		stopwords   bool
	)

	fs.StringVar(&configPath, "config", "", "Path to config file")
	fs.StringVar(&oursDir, "ours", "", "Folder with our documents")
	fs.StringVar(&theirsDir, "theirs", "", "Folder with their documents")
	fs.StringVar(&oursExt, "ours-ext", "", "Comma-separated extensions taken from the ours folder (default .docx)")
	fs.StringVar(&theirsExt, "theirs-ext", "", "Comma-separated extensions taken from the theirs folder (default .pdf)")
	fs.StringVar(&output, "output", "", "Report file (.xlsx or .csv)")
	fs.DurationVar(&taskTimeout, "task-timeout", 0, "Abandon a single comparison after this long (0 = no limit)")
	fs.IntVar(&workers, "workers", 0, "Number of parallel comparisons (0: number of CPUs)")
	fs.StringVar(&dbURL, "db-url", "", "PostgreSQL connection string to also store the report")
	fs.BoolVar(&progressBar, "progress-bar", false, "Show a progress bar instead of progress lines")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&stopwords, "stopwords", false, "Ignore common English stopwords when scoring")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: docsim [flags] [OURS_DIR THEIRS_DIR]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if rest := fs.Args(); len(rest) > 0 {
		if len(rest) != 2 {
			return nil, cfgPkg.NewConfigError(fmt.Errorf("expected two folders, got %d arguments", len(rest)))
		}
		config.Compare.Ours.Dir = rest[0]
		config.Compare.Theirs.Dir = rest[1]
	}

	// Override config with command line flags if provided
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ours":
			config.Compare.Ours.Dir = oursDir
		case "theirs":
			config.Compare.Theirs.Dir = theirsDir
		case "ours-ext":
			config.Compare.Ours.Extensions = splitList(oursExt)
		case "theirs-ext":
			config.Compare.Theirs.Extensions = splitList(theirsExt)
		case "output":
			config.Report.Output = output
		case "workers":
			if workers <= 0 {
				workers = runtime.NumCPU()
			}
			config.Compare.Workers = workers
		case "task-timeout":
			config.Compare.TaskTimeout = taskTimeout
		case "db-url":
			config.Database.URL = dbURL
			if config.Database.TableName == "" {
				config.Database.TableName = "similarity_results"
			}
		case "progress-bar":
			config.UI.ProgressBar = progressBar
		case "no-color":
			config.UI.NoColor = noColor
		case "stopwords":
			config.Processor.RemoveStopwords = stopwords
		}
	})

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
