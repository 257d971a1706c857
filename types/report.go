package types

// TestReport aggregates a completed run. Created once by the report builder
// and immutable afterward; every renderer is a pure function of it.
type TestReport struct {
	Environment Environment  `json:"environment"`
	RunID       string       `json:"runId"`
	TotalTests  int          `json:"totalTests"`
	Passed      int          `json:"passed"`
	Failed      int          `json:"failed"`
	SuccessRate float64      `json:"successRate"`
	Duration    float64      `json:"duration"` // seconds
	Results     []TestResult `json:"allTests"` // execution order
}

// AllPassed reports whether the run had no failures.
func (r *TestReport) AllPassed() bool {
	return r.Failed == 0
}

// FailedResults returns the failing results in execution order.
func (r *TestReport) FailedResults() []TestResult {
	var failed []TestResult
	for _, res := range r.Results {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	return failed
}
