// Package types contains shared types used across the test hub.
package types

import "fmt"

// Category groups test cases for filtering and classification.
type Category string

const (
	CategoryAuthentication  Category = "authentication"
	CategoryProfile         Category = "profile"
	CategoryAccountLinking  Category = "account-linking"
	CategoryTokenManagement Category = "token-management"
	CategoryEdgeCases       Category = "edge-cases"
)

// Categories lists every category in execution order. Authentication runs
// first because later categories consume the tokens and profiles it creates.
var Categories = []Category{
	CategoryAuthentication,
	CategoryProfile,
	CategoryAccountLinking,
	CategoryTokenManagement,
	CategoryEdgeCases,
}

// ParseCategory converts a CLI string into a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (valid: %v)", s, Categories)
}

// TestStatus represents the possible states of a test execution
type TestStatus string

const (
	TestStatusPass TestStatus = "pass"
	TestStatusFail TestStatus = "fail"
)

// Environment identifies the remote deployment under test.
type Environment string

const (
	EnvDev     Environment = "dev"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)

// ParseEnvironment converts a CLI string into an Environment.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvDev, EnvStaging, EnvProd:
		return Environment(s), nil
	}
	return "", fmt.Errorf("unknown environment %q (valid: dev, staging, prod)", s)
}

// OutputFormat selects the report renderer.
type OutputFormat string

const (
	OutputConsole OutputFormat = "console"
	OutputJSON    OutputFormat = "json"
	OutputJUnit   OutputFormat = "junit"
)

// ParseOutputFormat converts a CLI string into an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputConsole, OutputJSON, OutputJUnit:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format %q (valid: console, json, junit)", s)
}
