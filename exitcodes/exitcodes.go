// Package exitcodes defines the standard exit codes used by test-hub.
package exitcodes

// Exit code constants used by test-hub:
//
// * Success (0): all selected tests passed, or --help was requested
// * Failure (1): one or more tests failed, or the arguments were invalid
const (
	Success = 0
	Failure = 1
)
