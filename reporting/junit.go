package reporting

import (
	"encoding/xml"
	"fmt"

	"github.com/pkg/errors"

	"github.com/intersend/interspace-test-hub/types"
)

// JUnitFormatter renders the report in the standard
// <testsuites><testsuite><testcase> schema. encoding/xml escapes the five
// XML special characters in attributes and character data.
type JUnitFormatter struct{}

type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// Format implements the ReportFormatter interface
func (f *JUnitFormatter) Format(report *types.TestReport) (string, error) {
	suite := junitTestSuite{
		Name:     fmt.Sprintf("test-hub.%s", report.Environment),
		Tests:    report.TotalTests,
		Failures: report.Failed,
		Time:     junitTime(report.Duration),
	}

	for _, res := range report.Results {
		tc := junitTestCase{
			Name:      res.Name,
			Classname: string(res.Category),
			Time:      junitTime(res.Duration),
		}
		if !res.Success {
			message := res.Message
			if res.Error != nil {
				message = res.Error.Error()
			}
			tc.Failure = &junitFailure{
				Message: message,
				Type:    "AssertionError",
				Content: res.Message,
			}
		}
		suite.Cases = append(suite.Cases, tc)
	}

	doc := junitTestSuites{
		Tests:    report.TotalTests,
		Failures: report.Failed,
		Time:     junitTime(report.Duration),
		Suites:   []junitTestSuite{suite},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "rendering junit report")
	}
	return xml.Header + string(out) + "\n", nil
}

func junitTime(seconds float64) string {
	return fmt.Sprintf("%.3f", seconds)
}
