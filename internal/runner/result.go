// internal/runner/result.go
package runner

import (
	"time"

	"github.com/xkilldash9x/storefront-e2e/internal/scenario"
)

// Phase is a step in a scenario execution's lifecycle:
// NotStarted, SessionStarting, Running, one of Passed/Failed/Errored, then SessionTornDown.
type Phase string

const (
	PhaseNotStarted      Phase = "NotStarted"
	PhaseSessionStarting Phase = "SessionStarting"
	PhaseRunning         Phase = "Running"
	PhasePassed          Phase = "Passed"
	PhaseFailed          Phase = "Failed"
	PhaseErrored         Phase = "Errored"
	PhaseSessionTornDown Phase = "SessionTornDown"
)

// Status is a scenario's final outcome.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
)

// Result is the externally observable outcome of one scenario.
type Result struct {
	ID            string               `json:"id"`
	Slug          string               `json:"slug"`
	Name          string               `json:"name"`
	Status        Status               `json:"status"`
	Kind          scenario.FailureKind `json:"kind,omitempty"`
	Detail        string               `json:"detail,omitempty"`
	StartedAt     time.Time            `json:"started_at"`
	Duration      time.Duration        `json:"duration_ns"`
	SessionID     string               `json:"session_id,omitempty"`
	Teardowns     int                  `json:"teardowns"`
	TeardownError string               `json:"teardown_error,omitempty"`
	Phases        []Phase              `json:"phases"`
}

func (r *Result) advance(p Phase) { r.Phases = append(r.Phases, p) }

// settle records the outcome of err and moves to the matching terminal phase.
func (r *Result) settle(err error) {
	r.Kind = scenario.Classify(err)
	switch r.Kind {
	case scenario.KindNone:
		r.Status = StatusPassed
		r.advance(PhasePassed)
		return
	case scenario.KindAssertionFailure:
		r.Status = StatusFailed
		r.advance(PhaseFailed)
	default:
		r.Status = StatusErrored
		r.advance(PhaseErrored)
	}
	r.Detail = err.Error()
}

// Summary counts outcomes in a report.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
}

// Report is the result of one suite run, ordered like the catalogue.
type Report struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	BaseURL         string    `json:"base_url"`
	ClickStrategy   string    `json:"click_strategy"`
	ContractVersion string    `json:"contract_version"`
	Results         []Result  `json:"results"`
}

// Summary tallies the report's results.
func (r *Report) Summary() Summary {
	s := Summary{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		default:
			s.Errored++
		}
	}
	return s
}

// OK reports whether every scenario passed.
func (r *Report) OK() bool {
	s := r.Summary()
	return s.Passed == s.Total
}

// Duration is the wall time of the whole run.
func (r *Report) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }
