// internal/reporting/text.go
package reporting

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xkilldash9x/storefront-e2e/internal/runner"
)

var statusLabels = map[runner.Status]string{
	runner.StatusPassed:  "PASS",
	runner.StatusFailed:  "FAIL",
	runner.StatusErrored: "ERROR",
}

// writeText renders the human-readable summary a CI log shows.
func writeText(w io.Writer, report *runner.Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Run %s against %s (click strategy: %s, contract: %s)\n",
		report.RunID, report.BaseURL, report.ClickStrategy, report.ContractVersion)

	width := 0
	for _, res := range report.Results {
		if n := len(title(res)); n > width {
			width = n
		}
	}

	for _, res := range report.Results {
		label, ok := statusLabels[res.Status]
		if !ok {
			label = strings.ToUpper(string(res.Status))
		}
		fmt.Fprintf(bw, "  %-5s %-*s  %s\n", label, width, title(res), res.Duration.Round(time.Millisecond))
		if res.Kind != "" {
			fmt.Fprintf(bw, "        %s: %s\n", res.Kind, res.Detail)
		}
		if res.TeardownError != "" && !strings.HasPrefix(res.Detail, "teardown: ") {
			fmt.Fprintf(bw, "        teardown: %s\n", res.TeardownError)
		}
	}

	s := report.Summary()
	fmt.Fprintf(bw, "%d scenarios: %d passed, %d failed, %d errored in %s\n",
		s.Total, s.Passed, s.Failed, s.Errored, report.Duration().Round(time.Millisecond))
	return bw.Flush()
}

func title(res runner.Result) string {
	return res.ID + " " + res.Slug
}
