// internal/reporting/junit.go
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/storefront-e2e/internal/runner"
)

const junitSuiteName = "storefront-e2e"

// writeJUnit renders the report as JUnit XML. Failed scenarios become
// <failure>, errored ones <error>, so CI dashboards keep the distinction.
func writeJUnit(w io.Writer, report *runner.Report) error {
	doc := buildJUnit(report)
	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

func buildJUnit(report *runner.Report) *etree.Document {
	s := report.Summary()
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	suites := doc.CreateElement("testsuites")
	suites.CreateAttr("name", junitSuiteName)
	setCounts(suites, s, report.Duration())

	suite := suites.CreateElement("testsuite")
	suite.CreateAttr("name", junitSuiteName)
	suite.CreateAttr("id", report.RunID)
	suite.CreateAttr("timestamp", report.StartedAt.Format(time.RFC3339))
	setCounts(suite, s, report.Duration())

	props := suite.CreateElement("properties")
	for _, kv := range [][2]string{
		{"base_url", report.BaseURL},
		{"click_strategy", report.ClickStrategy},
		{"contract_version", report.ContractVersion},
	} {
		p := props.CreateElement("property")
		p.CreateAttr("name", kv[0])
		p.CreateAttr("value", kv[1])
	}

	for _, res := range report.Results {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("name", title(res))
		tc.CreateAttr("classname", junitSuiteName+"."+res.Slug)
		tc.CreateAttr("time", seconds(res.Duration))

		switch res.Status {
		case runner.StatusFailed:
			outcome := tc.CreateElement("failure")
			outcome.CreateAttr("type", string(res.Kind))
			outcome.CreateAttr("message", res.Detail)
			outcome.SetText(res.Detail)
		case runner.StatusErrored:
			outcome := tc.CreateElement("error")
			outcome.CreateAttr("type", string(res.Kind))
			outcome.CreateAttr("message", res.Detail)
			outcome.SetText(res.Detail)
		}

		out := tc.CreateElement("system-out")
		out.SetText(systemOut(res))
	}
	return doc
}

func setCounts(el *etree.Element, s runner.Summary, d time.Duration) {
	el.CreateAttr("tests", fmt.Sprint(s.Total))
	el.CreateAttr("failures", fmt.Sprint(s.Failed))
	el.CreateAttr("errors", fmt.Sprint(s.Errored))
	el.CreateAttr("time", seconds(d))
}

func systemOut(res runner.Result) string {
	phases := make([]string, len(res.Phases))
	for i, p := range res.Phases {
		phases[i] = string(p)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "session: %s\nphases: %s\nteardowns: %d", res.SessionID, strings.Join(phases, " -> "), res.Teardowns)
	if res.TeardownError != "" {
		fmt.Fprintf(&b, "\nteardown error: %s", res.TeardownError)
	}
	return b.String()
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
