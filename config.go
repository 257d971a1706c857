package testhub

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/intersend/interspace-test-hub/flags"
	"github.com/intersend/interspace-test-hub/types"
)

// APIVersion is the version prefix of every endpoint the hub consumes.
const APIVersion = "v2"

// defaultBaseURLs maps each environment onto its deployment.
var defaultBaseURLs = map[types.Environment]string{
	types.EnvDev:     "https://dev-api.interspace.app",
	types.EnvStaging: "https://staging-api.interspace.app",
	types.EnvProd:    "https://api.interspace.app",
}

// Config is the immutable per-run configuration.
type Config struct {
	Environment types.Environment
	BaseURL     string
	APIVersion  string

	// Category filters the run; empty means all categories.
	Category types.Category

	Output       types.OutputFormat
	Verbose      bool
	JUnitOutput  string
	ServeMetrics bool
	HealthzPort  int
	MetricsPort  int

	Log log.Logger
}

// environmentsFile is the optional YAML override for base URLs.
type environmentsFile struct {
	Environments map[string]string `yaml:"environments"`
}

// NewConfig parses the CLI context into a Config.
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	env, err := types.ParseEnvironment(ctx.String(flags.Env.Name))
	if err != nil {
		return nil, NewConfigError(err)
	}

	output, err := types.ParseOutputFormat(ctx.String(flags.Output.Name))
	if err != nil {
		return nil, NewConfigError(err)
	}

	var category types.Category
	if raw := ctx.String(flags.Category.Name); raw != "" {
		category, err = types.ParseCategory(raw)
		if err != nil {
			return nil, NewConfigError(err)
		}
	}

	baseURL, ok := defaultBaseURLs[env]
	if !ok {
		return nil, NewConfigError(fmt.Errorf("no base URL for environment %q", env))
	}
	if file := ctx.String(flags.Environments.Name); file != "" {
		overrides, err := loadEnvironments(file)
		if err != nil {
			return nil, NewConfigError(err)
		}
		if u, ok := overrides[string(env)]; ok {
			baseURL = u
		}
	}

	return &Config{
		Environment:  env,
		BaseURL:      baseURL,
		APIVersion:   APIVersion,
		Category:     category,
		Output:       output,
		Verbose:      ctx.Bool(flags.Verbose.Name),
		JUnitOutput:  ctx.String(flags.JUnitOutput.Name),
		ServeMetrics: ctx.Bool(flags.ServeMetrics.Name),
		HealthzPort:  ctx.Int(flags.HealthzPort.Name),
		MetricsPort:  ctx.Int(flags.MetricsPort.Name),
		Log:          logger,
	}, nil
}

func loadEnvironments(path string) (map[string]string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading environments file %s", path)
	}
	var file environmentsFile
	if err := yaml.Unmarshal(contents, &file); err != nil {
		return nil, errors.Wrapf(err, "parsing environments file %s", path)
	}
	if len(file.Environments) == 0 {
		return nil, errors.Errorf("environments file %s declares no environments", path)
	}
	return file.Environments, nil
}
