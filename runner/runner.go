// Package runner orchestrates a test run: it executes the selected cases in
// declaration order, isolates failures, tracks progress and ETA, and
// collects the ordered result list. A single logical worker drives the run;
// each test body is awaited to completion before the next starts, so the
// shared run context needs no locking.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/intersend/interspace-test-hub/metrics"
	"github.com/intersend/interspace-test-hub/types"
)

// CaseSource supplies the test cases to run; the registry is the production
// implementation.
type CaseSource interface {
	All() []types.TestCase
	ByCategory(c types.Category) []types.TestCase
}

// State tracks the runner lifecycle: idle → running → completed.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

// Config contains runner configuration.
type Config struct {
	Registry CaseSource
	Log      log.Logger
	Progress ProgressIndicator
}

// Runner executes test cases sequentially.
type Runner struct {
	registry CaseSource
	log      log.Logger
	progress ProgressIndicator

	state       State
	currentTest string
	results     []types.TestResult
	runContext  *types.RunContext
	elapsed     time.Duration
}

// New creates a Runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	if cfg.Progress == nil {
		cfg.Progress = NewLogProgressIndicator(cfg.Log)
	}
	return &Runner{
		registry: cfg.Registry,
		log:      cfg.Log,
		progress: cfg.Progress,
		state:    StateIdle,
	}, nil
}

// State returns the runner lifecycle state.
func (r *Runner) State() State {
	return r.state
}

// CurrentTest returns the name of the in-flight test, if any.
func (r *Runner) CurrentTest() string {
	return r.currentTest
}

// Results returns the results collected so far, in execution order.
func (r *Runner) Results() []types.TestResult {
	return append([]types.TestResult(nil), r.results...)
}

// Elapsed returns the wall clock of the last run, zero before any run.
func (r *Runner) Elapsed() time.Duration {
	return r.elapsed
}

// Context returns a read-only snapshot of the shared run state.
func (r *Runner) Context() types.RunContext {
	if r.runContext == nil {
		return types.RunContext{}
	}
	return r.runContext.Snapshot()
}

// RunAll executes every registered case.
func (r *Runner) RunAll(ctx context.Context) ([]types.TestResult, error) {
	return r.run(ctx, r.registry.All())
}

// RunCategory executes the cases of one category.
func (r *Runner) RunCategory(ctx context.Context, category types.Category) ([]types.TestResult, error) {
	cases := r.registry.ByCategory(category)
	if len(cases) == 0 {
		return nil, fmt.Errorf("no test cases in category %q", category)
	}
	return r.run(ctx, cases)
}

func (r *Runner) run(ctx context.Context, cases []types.TestCase) ([]types.TestResult, error) {
	if len(cases) == 0 {
		return nil, errors.New("no test cases selected")
	}

	r.state = StateRunning
	r.results = r.results[:0]
	r.runContext = &types.RunContext{}
	r.elapsed = 0
	start := time.Now()
	total := len(cases)
	r.progress.Start(total)

	for i, tc := range cases {
		r.currentTest = tc.Name
		progress := float64(i) / float64(total)
		r.progress.StartTest(tc.Name, i, total, progress, r.estimate(cases, i, time.Since(start)))

		result := r.execute(ctx, tc)
		r.results = append(r.results, *result)
		r.progress.CompleteTest(tc.Name, result.Status(), secondsToDuration(result.Duration))
		metrics.RecordTest(string(tc.Category), string(result.Status()), result.Duration)
	}

	r.currentTest = ""
	r.state = StateCompleted
	r.elapsed = time.Since(start)

	passed, failed := tally(r.results)
	r.progress.Complete(passed, failed, r.elapsed)

	return r.Results(), nil
}

// execute runs one test body with total failure isolation: a returned error
// or a panic becomes a failing result with code EXECUTION_ERROR and the run
// continues.
func (r *Runner) execute(ctx context.Context, tc types.TestCase) (result *types.TestResult) {
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("test body panicked", "name", tc.Name, "panic", rec)
			result = executionError(tc, fmt.Sprintf("test body panicked: %v", rec))
			result.Duration = time.Since(start).Seconds()
		}
	}()

	res, err := tc.Run(ctx, r.runContext)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		r.log.Error("test body failed to produce a result", "name", tc.Name, "err", err)
		result = executionError(tc, err.Error())
	case res == nil:
		result = executionError(tc, "test body returned no result")
	default:
		result = res
		// The registry owns identity; bodies only fill it in redundantly.
		result.Name = tc.Name
		result.Category = tc.Category
	}
	result.Duration = elapsed.Seconds()
	return result
}

// estimate computes the remaining time: observed average once at least one
// case completed, declared hints before that.
func (r *Runner) estimate(cases []types.TestCase, completed int, elapsed time.Duration) time.Duration {
	remaining := len(cases) - completed
	if completed == 0 {
		var hinted time.Duration
		for _, tc := range cases {
			hinted += tc.ExpectedDuration
		}
		return hinted
	}
	avg := elapsed / time.Duration(completed)
	return avg * time.Duration(remaining)
}

func executionError(tc types.TestCase, msg string) *types.TestResult {
	return types.Fail(tc.Name, tc.Category, msg, types.NewTestError(types.CodeExecutionError, msg))
}

func tally(results []types.TestResult) (passed, failed int) {
	for _, res := range results {
		if res.Success {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p*100)
}
