// internal/reporting/json.go
package reporting

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/storefront-e2e/internal/runner"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonReport adds the derived summary to the wire form of a report.
type jsonReport struct {
	*runner.Report
	Summary runner.Summary `json:"summary"`
	OK      bool           `json:"ok"`
}

func writeJSON(w io.Writer, report *runner.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Report: report, Summary: report.Summary(), OK: report.OK()})
}
