package types

import (
	"context"
	"fmt"
	"time"
)

// Error codes reported inside TestError. Transport codes come from the
// network client; domain codes from the test services; EXECUTION_ERROR is
// synthesized by the runner when a test body fails instead of returning a
// result.
const (
	CodeInvalidURL      = "INVALID_URL"
	CodeInvalidResponse = "INVALID_RESPONSE"
	CodeNoData          = "NO_DATA"
	CodeTimeout         = "TIMEOUT"
	CodeNoConnection    = "NO_CONNECTION"
	CodeRequestFailed   = "REQUEST_FAILED"

	CodeAuthFailed         = "AUTH_FAILED"
	CodeParseError         = "PARSE_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNoToken            = "NO_TOKEN"
	CodeNoRefreshToken     = "NO_REFRESH_TOKEN"
	CodeNoProfile          = "NO_PROFILE"
	CodeUnexpectedStatus   = "UNEXPECTED_STATUS"
	CodeDeleteNotPrevented = "DELETE_NOT_PREVENTED"

	CodeExecutionError = "EXECUTION_ERROR"
)

// TestError carries a short machine code plus a human message. It has no
// control-flow meaning beyond display and classification; nothing is retried
// because of it.
type TestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *TestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TestError) Unwrap() error {
	return e.Err
}

// NewTestError creates a TestError with the given code and message.
func NewTestError(code, message string) *TestError {
	return &TestError{Code: code, Message: message}
}

// WrapTestError creates a TestError wrapping an underlying error.
func WrapTestError(code, message string, err error) *TestError {
	return &TestError{Code: code, Message: message, Err: err}
}

// TestDetails is the correlation bag extracted from one test's response and
// read by later tests in the same run. Everything is optional.
type TestDetails struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	AccountID    string `json:"accountId,omitempty"`
	ProfileID    string `json:"profileId,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
	LastStatus   int    `json:"lastStatus,omitempty"`
	LastURL      string `json:"lastUrl,omitempty"`
	LastMethod   string `json:"lastMethod,omitempty"`
}

// TestResult captures the outcome of a single executed test case.
type TestResult struct {
	Name     string       `json:"name"`
	Category Category     `json:"category"`
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Duration float64      `json:"duration"` // seconds, wall clock
	Error    *TestError   `json:"error,omitempty"`
	Details  *TestDetails `json:"details,omitempty"`
}

// Status maps the boolean outcome onto a TestStatus.
func (r *TestResult) Status() TestStatus {
	if r.Success {
		return TestStatusPass
	}
	return TestStatusFail
}

// Pass builds a passing result.
func Pass(name string, category Category, message string) *TestResult {
	return &TestResult{Name: name, Category: category, Success: true, Message: message}
}

// Fail builds a failing result carrying the given error.
func Fail(name string, category Category, message string, err *TestError) *TestResult {
	return &TestResult{Name: name, Category: category, Success: false, Message: message, Error: err}
}

// WithDetails attaches correlation data to the result.
func (r *TestResult) WithDetails(d *TestDetails) *TestResult {
	r.Details = d
	return r
}

// RunFunc is the executable body of a test case. It receives the run-scoped
// shared state and either returns a result or fails outright; the runner
// converts the latter into a failing result with code EXECUTION_ERROR.
type RunFunc func(ctx context.Context, rc *RunContext) (*TestResult, error)

// TestCase declares one named, categorized check against the live API.
// Cases are constructed once per run by the registry, never mutated, and
// executed exactly once.
type TestCase struct {
	Name             string
	Category         Category
	Description      string
	RequiresAuth     bool
	ExpectedDuration time.Duration // ETA hint only, never enforced
	Run              RunFunc
}
