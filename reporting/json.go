package reporting

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/intersend/interspace-test-hub/types"
)

// JSONFormatter renders the report as pretty-printed JSON with
// deterministically sorted keys, so rendering the same report twice is
// byte-identical and diffs stay small.
type JSONFormatter struct{}

// Format implements the ReportFormatter interface
func (f *JSONFormatter) Format(report *types.TestReport) (string, error) {
	// Round-trip through generic maps: encoding/json sorts map keys at
	// every nesting level.
	raw, err := json.Marshal(report)
	if err != nil {
		return "", errors.Wrap(err, "encoding report")
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", errors.Wrap(err, "normalizing report")
	}
	sorted, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "rendering report")
	}
	return string(sorted) + "\n", nil
}

// ParseJSON decodes a JSON rendering back into a TestReport.
func ParseJSON(data []byte) (*types.TestReport, error) {
	var report types.TestReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrap(err, "decoding report")
	}
	return &report, nil
}
