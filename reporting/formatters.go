package reporting

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/intersend/interspace-test-hub/types"
)

// ReportFormatter renders a TestReport into one output format.
type ReportFormatter interface {
	Format(report *types.TestReport) (string, error)
}

// ForFormat returns the formatter for a CLI output format.
func ForFormat(f types.OutputFormat) (ReportFormatter, error) {
	switch f {
	case types.OutputConsole:
		return &ConsoleFormatter{}, nil
	case types.OutputJSON:
		return &JSONFormatter{}, nil
	case types.OutputJUnit:
		return &JUnitFormatter{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", f)
}

// ReportWriter defines the interface for writing rendered reports.
type ReportWriter interface {
	Write(content string) error
}

// FileWriter writes reports to a file
type FileWriter struct {
	path string
}

// NewFileWriter creates a new file writer
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

// Write writes the content to the file
func (fw *FileWriter) Write(content string) error {
	return os.WriteFile(fw.path, []byte(content), 0644)
}

// StdoutWriter writes reports to stdout
type StdoutWriter struct{}

// NewStdoutWriter creates a new stdout writer
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{}
}

// Write writes the content to stdout
func (sw *StdoutWriter) Write(content string) error {
	_, err := fmt.Print(content)
	return err
}

// ConsoleFormatter renders the human summary: a per-category table plus a
// bulleted list of failed tests.
type ConsoleFormatter struct{}

// Format implements the ReportFormatter interface
func (f *ConsoleFormatter) Format(report *types.TestReport) (string, error) {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Test Hub Results: %s (%s)", report.Environment, formatSeconds(report.Duration)))

	t.AppendHeader(table.Row{"Category", "Test", "Duration", "Status", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Category", AutoMerge: true},
		{Name: "Test", WidthMax: 50},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, res := range report.Results {
		errText := ""
		if res.Error != nil {
			errText = res.Error.Code
		}
		t.AppendRow(table.Row{
			string(res.Category),
			res.Name,
			formatSeconds(res.Duration),
			statusString(res.Status()),
			errText,
		})
	}

	if report.AllPassed() {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}
	// The colored styles uppercase the footer row; keep the summary as written.
	t.Style().Format.Footer = text.FormatDefault

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d tests", report.TotalTests),
		formatSeconds(report.Duration),
		fmt.Sprintf("%d passed, %d failed", report.Passed, report.Failed),
		fmt.Sprintf("%.1f%%", report.SuccessRate*100),
	})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")

	if failed := report.FailedResults(); len(failed) > 0 {
		b.WriteString("\nFailed tests:\n")
		for _, res := range failed {
			b.WriteString(fmt.Sprintf("  • %s", res.Name))
			if res.Error != nil {
				b.WriteString(fmt.Sprintf(": %s", res.Error.Error()))
			} else if res.Message != "" {
				b.WriteString(fmt.Sprintf(": %s", res.Message))
			}
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

func statusString(status types.TestStatus) string {
	if status == types.TestStatusPass {
		return "✓ pass"
	}
	return "✗ fail"
}

// formatSeconds formats a duration in seconds with 1 decimal place.
func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.1fs", seconds)
}
