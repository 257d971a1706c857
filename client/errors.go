package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/intersend/interspace-test-hub/types"
)

// Error is the closed transport error set surfaced by the client. Callers
// classify on Code; the cause is kept for logs only.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Cause
}

var (
	ErrInvalidURL      = &Error{Code: types.CodeInvalidURL, Message: "invalid request URL"}
	ErrInvalidResponse = &Error{Code: types.CodeInvalidResponse, Message: "invalid response from server"}
	ErrNoData          = &Error{Code: types.CodeNoData, Message: "no data in response"}
)

func errTimeout(cause error) *Error {
	return &Error{Code: types.CodeTimeout, Message: "request timed out", Cause: cause}
}

func errNoConnection(cause error) *Error {
	return &Error{Code: types.CodeNoConnection, Message: "no connection to server", Cause: cause}
}

func errRequestFailed(cause error) *Error {
	return &Error{Code: types.CodeRequestFailed, Message: "request failed", Cause: cause}
}

// classify maps a transport failure from the http stack onto the closed
// error set. Timeouts are reported as TIMEOUT, never as a generic failure.
func classify(err error) *Error {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errTimeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errTimeout(err)
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EHOSTUNREACH) {
		return errNoConnection(err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return errNoConnection(err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return errNoConnection(err)
	}

	return errRequestFailed(err)
}

// AsTestError converts a client error into the TestError reported inside a
// TestResult, preserving the transport code.
func AsTestError(err error) *types.TestError {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return types.WrapTestError(clientErr.Code, clientErr.Message, clientErr.Cause)
	}
	return types.WrapTestError(types.CodeRequestFailed, "request failed", err)
}
