// Package metrics exposes prometheus metrics for the test hub.
package metrics

import (
	"slices"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "testhub"
)

var (
	Debug        bool = false
	validResults      = []string{"pass", "fail"}

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	testsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tests_total",
		Help:      "Count of executed test cases",
	}, []string{
		"category",
		"result",
	})

	testDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Name:      "test_duration_seconds",
		Help:      "Duration of test cases",
		Buckets:   prometheus.DefBuckets,
	}, []string{
		"category",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of a completed run",
	}, []string{
		"environment",
		"run_id",
		"result",
	})

	runTestTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_test_total",
		Help:      "Total number of test cases in a run",
	}, []string{
		"environment",
		"run_id",
	})

	runTestPassed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_test_passed",
		Help:      "Number of passed test cases in a run",
	}, []string{
		"environment",
		"run_id",
	})

	runTestFailed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_test_failed",
		Help:      "Number of failed test cases in a run",
	}, []string{
		"environment",
		"run_id",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of a completed run",
	}, []string{
		"environment",
		"run_id",
	})
)

// RecordError counts an internal error.
func RecordError(error string) {
	if Debug {
		log.Debug("metric inc", "m", "errors_total", "error", error)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordTest counts one executed test case.
func RecordTest(category string, result string, durationSeconds float64) {
	if !isValidResult(result) {
		log.Error("RecordTest - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "tests_total",
			"category", category,
			"result", result)
	}
	testsTotal.WithLabelValues(category, result).Inc()
	testDuration.WithLabelValues(category).Observe(durationSeconds)
}

// RecordRun publishes the aggregate outcome of a completed run.
func RecordRun(
	environment string,
	runID string,
	result string,
	total int,
	passed int,
	failed int,
	durationSeconds float64,
) {
	runResults.WithLabelValues(environment, runID, result).Set(1)
	runTestTotal.WithLabelValues(environment, runID).Set(float64(total))
	runTestPassed.WithLabelValues(environment, runID).Set(float64(passed))
	runTestFailed.WithLabelValues(environment, runID).Set(float64(failed))
	runDuration.WithLabelValues(environment, runID).Set(durationSeconds)
}

func isValidResult(result string) bool {
	return slices.Contains(validResults, result)
}
