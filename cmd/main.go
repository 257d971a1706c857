package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	testhub "github.com/intersend/interspace-test-hub"
	"github.com/intersend/interspace-test-hub/exitcodes"
	"github.com/intersend/interspace-test-hub/flags"
	"github.com/intersend/interspace-test-hub/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "test-hub"
	app.Usage = "Interspace API Test Hub"
	app.Description = "test-hub drives categorized integration tests against the Interspace auth/profile/wallet API and reports the results"
	app.Flags = flags.Flags
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		// A completed run with failures already rendered its report;
		// configuration and runtime errors go to stderr.
		if !testhub.IsTestFailureError(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitcodes.Failure)
	}
	os.Exit(exitcodes.Success)
}

func run(ctx *cli.Context) error {
	level := log.LevelInfo
	if ctx.Bool(flags.Verbose.Name) {
		level = log.LevelDebug
	}
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, level, false)
	log.SetDefault(log.NewLogger(handler))
	logger := log.Root()

	cfg, err := testhub.NewConfig(ctx, logger)
	if err != nil {
		return err
	}

	hub, err := testhub.New(cfg, Version)
	if err != nil {
		return err
	}

	if cfg.ServeMetrics {
		svc := service.New(service.Config{
			HealthzPort: cfg.HealthzPort,
			MetricsPort: cfg.MetricsPort,
			Log:         logger,
		})
		svc.Start()
		defer svc.Shutdown()
	}

	report, err := hub.Run(ctx.Context)
	if err != nil {
		return err
	}

	out, err := hub.Render(report)
	if err != nil {
		return err
	}
	fmt.Print(out)

	if !report.AllPassed() {
		return testhub.NewTestFailureError(report.Failed)
	}
	return nil
}
