// Package testhub wires the network client, registry, runner and reporting
// into the categorized test orchestration service.
package testhub

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/intersend/interspace-test-hub/client"
	"github.com/intersend/interspace-test-hub/metrics"
	"github.com/intersend/interspace-test-hub/registry"
	"github.com/intersend/interspace-test-hub/reporting"
	"github.com/intersend/interspace-test-hub/runner"
	"github.com/intersend/interspace-test-hub/types"
)

// Hub drives one test run end to end.
type Hub struct {
	config   *Config
	version  string
	registry *registry.Registry
	runner   *runner.Runner
	report   *types.TestReport

	running atomic.Bool
}

// New creates a Hub from a parsed configuration.
func New(cfg *Config, version string) (*Hub, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	cfg.Log.Debug("Creating test hub",
		"environment", cfg.Environment,
		"baseURL", cfg.BaseURL,
		"category", cfg.Category,
		"output", cfg.Output)

	apiClient, err := client.New(client.Config{
		BaseURL:    cfg.BaseURL,
		APIVersion: cfg.APIVersion,
		Log:        cfg.Log,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating network client")
	}

	reg, err := registry.New(registry.Config{
		Client: apiClient,
		Log:    cfg.Log,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating registry")
	}

	testRunner, err := runner.New(runner.Config{
		Registry: reg,
		Log:      cfg.Log,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating test runner")
	}

	return &Hub{
		config:   cfg,
		version:  version,
		registry: reg,
		runner:   testRunner,
	}, nil
}

// Run executes the selected tests and returns the aggregate report.
func (h *Hub) Run(ctx context.Context) (*types.TestReport, error) {
	h.running.Store(true)
	defer h.running.Store(false)

	runID := uuid.NewString()
	h.config.Log.Info("Starting test run",
		"run_id", runID,
		"environment", h.config.Environment,
		"category", h.config.Category)

	var results []types.TestResult
	var err error
	if h.config.Category != "" {
		results, err = h.runner.RunCategory(ctx, h.config.Category)
	} else {
		results, err = h.runner.RunAll(ctx)
	}
	if err != nil {
		return nil, NewConfigError(err)
	}

	report := reporting.BuildReport(h.config.Environment, runID, results, h.runner.Elapsed())
	h.report = report

	result := types.TestStatusPass
	if !report.AllPassed() {
		result = types.TestStatusFail
	}
	metrics.RecordRun(
		string(report.Environment),
		report.RunID,
		string(result),
		report.TotalTests,
		report.Passed,
		report.Failed,
		report.Duration,
	)

	if h.config.JUnitOutput != "" {
		if err := h.persistJUnit(report); err != nil {
			return nil, err
		}
	}

	h.config.Log.Info("Test run finished",
		"run_id", report.RunID,
		"total", report.TotalTests,
		"passed", report.Passed,
		"failed", report.Failed)

	return report, nil
}

// Render produces the report in the configured output format.
func (h *Hub) Render(report *types.TestReport) (string, error) {
	formatter, err := reporting.ForFormat(h.config.Output)
	if err != nil {
		return "", NewConfigError(err)
	}
	return formatter.Format(report)
}

// Running returns true while a run is in flight.
func (h *Hub) Running() bool {
	return h.running.Load()
}

// Report returns the report of the last completed run, if any.
func (h *Hub) Report() *types.TestReport {
	return h.report
}

// persistJUnit writes a JUnit rendering next to the stdout report, for CI
// collectors that read files regardless of the chosen console format.
func (h *Hub) persistJUnit(report *types.TestReport) error {
	content, err := (&reporting.JUnitFormatter{}).Format(report)
	if err != nil {
		return errors.Wrap(err, "rendering junit file")
	}
	if err := reporting.NewFileWriter(h.config.JUnitOutput).Write(content); err != nil {
		return errors.Wrapf(err, "writing junit file %s", h.config.JUnitOutput)
	}
	h.config.Log.Info("Wrote JUnit report", "path", h.config.JUnitOutput)
	return nil
}
