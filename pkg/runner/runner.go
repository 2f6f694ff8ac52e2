// Package runner executes comparison tasks on a fixed-size worker pool.
//
// Every task extracts the text of both documents and scores them. Tasks are
// independent: a failure, panic or timeout in one task becomes a TaskError
// for that pair and never stops the others. Outcomes are returned in the
// order tasks finish, not the order they were submitted.
package runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/xhad/docsim/internal/models"
	"github.com/xhad/docsim/internal/types"
	"golang.org/x/sync/errgroup"
)

// Stage names the step of a comparison that failed.
type Stage string

const (
	StageExtractLeft  Stage = "extract-left"
	StageExtractRight Stage = "extract-right"
	StageScore        Stage = "score"
	StageTimeout      Stage = "timeout"
	StageCancelled    Stage = "cancelled"
)

var ErrTaskTimeout = errors.New("comparison timed out")

// TaskError records why one pair could not be compared.
type TaskError struct {
	Seq       int
	LeftName  string
	RightName string
	Stage     Stage
	Err       error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("failed to compare %s with %s (%s): %v", e.LeftName, e.RightName, e.Stage, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Outcome is the result of one task. Exactly one of Result and Err is set.
type Outcome struct {
	Result *models.ComparisonResult
	Err    *TaskError
}

type RunnerConfig struct {
	Workers     int
	TaskTimeout time.Duration
	// OnProgress is called after every outcome with the number of outcomes
	// collected so far. It runs on the collecting goroutine.
	OnProgress func(completed, total int)
}

type Runner struct {
	config    RunnerConfig
	extractor types.Extractor
	scorer    types.Scorer
}

func NewWithConfig(config RunnerConfig, extractor types.Extractor, scorer types.Scorer) *Runner {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	return &Runner{
		config:    config,
		extractor: extractor,
		scorer:    scorer,
	}
}

// Run compares every task and returns one Outcome per task, in completion
// order. Once ctx is done, tasks that have not started are reported as
// cancelled; tasks already running are allowed to finish.
func (r *Runner) Run(ctx context.Context, tasks types.TaskSource) []Outcome {
	total := tasks.Len()
	outcomes := make(chan Outcome, r.config.Workers)

	go func() {
		defer close(outcomes)

		var g errgroup.Group
		g.SetLimit(r.config.Workers)

		for _, task := range tasks.All() {
			if err := ctx.Err(); err != nil {
				outcomes <- failed(task, StageCancelled, err)
				continue
			}

			g.Go(func() error {
				// Go may have blocked on a free slot past cancellation.
				if err := ctx.Err(); err != nil {
					outcomes <- failed(task, StageCancelled, err)
					return nil
				}
				outcomes <- r.execute(task)
				return nil
			})
		}

		_ = g.Wait()
	}()

	collected := make([]Outcome, 0, total)
	for outcome := range outcomes {
		collected = append(collected, outcome)
		if r.config.OnProgress != nil {
			r.config.OnProgress(len(collected), total)
		}
	}

	return collected
}

// execute runs one task, bounded by TaskTimeout when set. A timed-out
// comparison keeps running in the background; its result is discarded.
func (r *Runner) execute(task models.ComparisonTask) Outcome {
	if r.config.TaskTimeout <= 0 {
		return r.compare(task)
	}

	done := make(chan Outcome, 1)
	go func() {
		done <- r.compare(task)
	}()

	timer := time.NewTimer(r.config.TaskTimeout)
	defer timer.Stop()

	select {
	case outcome := <-done:
		return outcome
	case <-timer.C:
		return failed(task, StageTimeout, fmt.Errorf("%w after %s", ErrTaskTimeout, r.config.TaskTimeout))
	}
}

func (r *Runner) compare(task models.ComparisonTask) (outcome Outcome) {
	stage := StageExtractLeft
	defer func() {
		if p := recover(); p != nil {
			outcome = failed(task, stage, fmt.Errorf("panic: %v", p))
		}
	}()

	leftText, err := r.extractor.Extract(task.Left)
	if err != nil {
		return failed(task, stage, err)
	}

	stage = StageExtractRight
	rightText, err := r.extractor.Extract(task.Right)
	if err != nil {
		return failed(task, stage, err)
	}

	stage = StageScore
	similarity := r.scorer.Score(leftText, rightText)
	if math.IsNaN(similarity) || similarity < 0 || similarity > 1 {
		return failed(task, stage, fmt.Errorf("similarity %v outside [0,1]", similarity))
	}

	return Outcome{
		Result: &models.ComparisonResult{
			Seq:        task.Seq,
			LeftName:   task.Left.Name,
			RightName:  task.Right.Name,
			Similarity: similarity,
		},
	}
}

func failed(task models.ComparisonTask, stage Stage, err error) Outcome {
	return Outcome{
		Err: &TaskError{
			Seq:       task.Seq,
			LeftName:  task.Left.Name,
			RightName: task.Right.Name,
			Stage:     stage,
			Err:       err,
		},
	}
}
