package reporting

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intersend/interspace-test-hub/types"
)

func TestJSONFormatDeterministic(t *testing.T) {
	report := BuildReport(types.EnvDev, "run-1", sampleResults(), 1750*time.Millisecond)
	f := &JSONFormatter{}

	first, err := f.Format(report)
	require.NoError(t, err)
	second, err := f.Format(report)
	require.NoError(t, err)

	// Rendering the same report twice must be byte-identical.
	assert.Equal(t, first, second)
	assert.True(t, json.Valid([]byte(first)))
}

func TestJSONFormatShape(t *testing.T) {
	report := BuildReport(types.EnvStaging, "run-2", sampleResults(), 1750*time.Millisecond)
	f := &JSONFormatter{}

	out, err := f.Format(report)
	require.NoError(t, err)

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &generic))

	assert.Equal(t, "staging", generic["environment"])
	assert.Equal(t, "run-2", generic["runId"])
	assert.EqualValues(t, 3, generic["totalTests"])

	all, ok := generic["allTests"].([]interface{})
	require.True(t, ok)
	require.Len(t, all, 3)

	failing, ok := all[2].(map[string]interface{})
	require.True(t, ok)
	errObj, ok := failing["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, types.CodeAuthFailed, errObj["code"])

	// Passing results carry no error key.
	passing, ok := all[0].(map[string]interface{})
	require.True(t, ok)
	_, hasErr := passing["error"]
	assert.False(t, hasErr)
}

func TestJSONRoundTrip(t *testing.T) {
	report := BuildReport(types.EnvProd, "run-3", sampleResults(), 1750*time.Millisecond)
	f := &JSONFormatter{}

	out, err := f.Format(report)
	require.NoError(t, err)

	parsed, err := ParseJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, report.TotalTests, parsed.TotalTests)
	assert.Equal(t, report.Passed, parsed.Passed)
	assert.Equal(t, report.Failed, parsed.Failed)
	assert.Equal(t, report.RunID, parsed.RunID)
	require.Len(t, parsed.Results, len(report.Results))
	assert.Equal(t, report.Results[2].Error.Code, parsed.Results[2].Error.Code)
}

func TestParseJSONInvalid(t *testing.T) {
	_, err := ParseJSON([]byte(`not json`))
	require.Error(t, err)
}
