// internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xkilldash9x/storefront-e2e/internal/config"
	"github.com/xkilldash9x/storefront-e2e/internal/runner"
)

// Supported report formats.
const (
	FormatText  = config.ReportText
	FormatJSON  = config.ReportJSON
	FormatJUnit = config.ReportJUnit
)

// Formats lists the accepted values for the report format option.
func Formats() []string { return config.ReportFormats() }

// Reporter writes run reports to an output.
type Reporter interface {
	// Write renders a single run report.
	Write(report *runner.Report) error
	// Close flushes and releases the underlying output (e.g., file handles).
	Close() error
}

// encodeFunc renders a report onto w.
type encodeFunc func(w io.Writer, report *runner.Report) error

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

type streamReporter struct {
	out    io.WriteCloser
	encode encodeFunc
}

func (r *streamReporter) Write(report *runner.Report) error {
	if report == nil {
		return fmt.Errorf("nothing to report")
	}
	return r.encode(r.out, report)
}

func (r *streamReporter) Close() error {
	return r.out.Close()
}

// New creates a new reporter based on the specified format and output path.
// An empty path or "stdout" writes to standard output.
func New(format, outputPath string) (Reporter, error) {
	return NewWithStdout(format, outputPath, os.Stdout)
}

// NewWithStdout is New with an explicit writer standing in for standard output.
func NewWithStdout(format, outputPath string, stdout io.Writer) (Reporter, error) {
	encode, err := encoderFor(format)
	if err != nil {
		return nil, err
	}

	var writer io.WriteCloser
	if outputPath == "" || outputPath == "stdout" {
		// Wrap Stdout so Close() is a no-op.
		writer = &nopWriteCloser{stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}
	return &streamReporter{out: writer, encode: encode}, nil
}

func encoderFor(format string) (encodeFunc, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return writeText, nil
	case FormatJSON:
		return writeJSON, nil
	case FormatJUnit, "xml":
		return writeJUnit, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
