// Package reporting reduces an ordered result list to a TestReport and
// renders it. Every formatter is a pure function of the report, so formats
// can be added or swapped without touching the runner.
package reporting

import (
	"time"

	"github.com/intersend/interspace-test-hub/types"
)

// BuildReport aggregates a completed run. Result order is preserved;
// consumers rely on it for deterministic diffs. elapsed is the wall clock
// of the whole run, which exceeds the sum of per-test durations whenever
// the runner spends time between tests.
func BuildReport(environment types.Environment, runID string, results []types.TestResult, elapsed time.Duration) *types.TestReport {
	report := &types.TestReport{
		Environment: environment,
		RunID:       runID,
		TotalTests:  len(results),
		Duration:    elapsed.Seconds(),
		Results:     append([]types.TestResult(nil), results...),
	}

	for _, res := range results {
		if res.Success {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	if report.TotalTests > 0 {
		report.SuccessRate = float64(report.Passed) / float64(report.TotalTests)
	}
	return report
}
