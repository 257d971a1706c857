package runner

import (
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/intersend/interspace-test-hub/types"
)

// ProgressIndicator receives runner progress updates.
type ProgressIndicator interface {
	Start(total int)
	StartTest(name string, completed, total int, progress float64, eta time.Duration)
	CompleteTest(name string, status types.TestStatus, duration time.Duration)
	Complete(passed, failed int, duration time.Duration)
}

// noOpProgressIndicator provides a no-op implementation of ProgressIndicator
type noOpProgressIndicator struct{}

// NewNoOpProgressIndicator creates a progress indicator that does nothing
func NewNoOpProgressIndicator() ProgressIndicator {
	return &noOpProgressIndicator{}
}

func (n *noOpProgressIndicator) Start(total int) {}
func (n *noOpProgressIndicator) StartTest(name string, completed, total int, progress float64, eta time.Duration) {
}
func (n *noOpProgressIndicator) CompleteTest(name string, status types.TestStatus, duration time.Duration) {
}
func (n *noOpProgressIndicator) Complete(passed, failed int, duration time.Duration) {}

// logProgressIndicator reports progress through the structured logger.
type logProgressIndicator struct {
	log log.Logger
}

// NewLogProgressIndicator creates a progress indicator that logs updates.
func NewLogProgressIndicator(logger log.Logger) ProgressIndicator {
	return &logProgressIndicator{log: logger}
}

func (l *logProgressIndicator) Start(total int) {
	l.log.Info("run started", "total", total)
}

func (l *logProgressIndicator) StartTest(name string, completed, total int, progress float64, eta time.Duration) {
	l.log.Info("running test",
		"name", name,
		"completed", completed,
		"total", total,
		"progress", formatPercent(progress),
		"eta", eta.Truncate(100*time.Millisecond))
}

func (l *logProgressIndicator) CompleteTest(name string, status types.TestStatus, duration time.Duration) {
	if status == types.TestStatusPass {
		l.log.Info("test passed", "name", name, "duration", duration.Truncate(time.Millisecond))
		return
	}
	l.log.Warn("test failed", "name", name, "duration", duration.Truncate(time.Millisecond))
}

func (l *logProgressIndicator) Complete(passed, failed int, duration time.Duration) {
	l.log.Info("run finished", "passed", passed, "failed", failed, "duration", duration.Truncate(time.Millisecond))
}
