// Package flags declares the CLI surface of test-hub.
package flags

import (
	"github.com/urfave/cli/v2"

	"github.com/intersend/interspace-test-hub/service"
)

const EnvVarPrefix = "TESTHUB"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Env = &cli.StringFlag{
		Name:    "env",
		Aliases: []string{"e"},
		Value:   "dev",
		EnvVars: prefixEnvVars("ENV"),
		Usage:   "Environment to test against (dev|staging|prod)",
	}
	Category = &cli.StringFlag{
		Name:    "category",
		Aliases: []string{"c"},
		Value:   "",
		EnvVars: prefixEnvVars("CATEGORY"),
		Usage:   "Only run one category (authentication|profile|account-linking|token-management|edge-cases)",
	}
	Output = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Value:   "console",
		EnvVars: prefixEnvVars("OUTPUT"),
		Usage:   "Report format printed to stdout (console|json|junit)",
	}
	Verbose = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Value:   false,
		EnvVars: prefixEnvVars("VERBOSE"),
		Usage:   "Enable debug logging, including request/response payloads",
	}
	Environments = &cli.StringFlag{
		Name:    "environments",
		Value:   "",
		EnvVars: prefixEnvVars("ENVIRONMENTS"),
		Usage:   "Path to a YAML file overriding environment base URLs",
	}
	JUnitOutput = &cli.StringFlag{
		Name:    "junit-output",
		Value:   "",
		EnvVars: prefixEnvVars("JUNIT_OUTPUT"),
		Usage:   "Also write a JUnit XML report to this path",
	}
	ServeMetrics = &cli.BoolFlag{
		Name:    "serve-metrics",
		Value:   false,
		EnvVars: prefixEnvVars("SERVE_METRICS"),
		Usage:   "Expose healthz and prometheus metrics servers during the run",
	}
	HealthzPort = &cli.IntFlag{
		Name:    "healthz-port",
		Value:   service.DefaultHealthzPort,
		EnvVars: prefixEnvVars("HEALTHZ_PORT"),
		Usage:   "Port for the healthz endpoint when --serve-metrics is set",
	}
	MetricsPort = &cli.IntFlag{
		Name:    "metrics-port",
		Value:   service.DefaultMetricsPort,
		EnvVars: prefixEnvVars("METRICS_PORT"),
		Usage:   "Port for the prometheus endpoint when --serve-metrics is set",
	}
)

var Flags = []cli.Flag{
	Env,
	Category,
	Output,
	Verbose,
	Environments,
	JUnitOutput,
	ServeMetrics,
	HealthzPort,
	MetricsPort,
}
