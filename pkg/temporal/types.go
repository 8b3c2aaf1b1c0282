package temporal

import (
	"time"

	"github.com/cacctools/drivecycle/pkg/cacc"
)

// SuiteRequest asks for one evaluation run over a set of scenarios.
type SuiteRequest struct {
	Suite     string            `json:"suite"`
	Scenarios []ScenarioRequest `json:"scenarios"`
}

// ScenarioRequest names one scenario's log and the checks to run on it.
type ScenarioRequest struct {
	Name   string      `json:"name"`
	Log    string      `json:"log"`              // log file name, relative to the worker's log source
	Checks []string    `json:"checks,omitempty"` // empty means all checks
	Bounds cacc.Bounds `json:"bounds,omitempty"` // zero fields use defaults
}

// ScenarioResult is one scenario's check outcomes.
type ScenarioResult struct {
	Scenario string         `json:"scenario"`
	Outcomes []cacc.Outcome `json:"outcomes"`
}

// SuiteResult aggregates an evaluation run.
type SuiteResult struct {
	RunID      string           `json:"run_id"`
	Suite      string           `json:"suite"`
	Results    []ScenarioResult `json:"results"`
	Passed     int              `json:"passed"`
	Failed     int              `json:"failed"`
	Skipped    int              `json:"skipped"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// Tally recomputes the pass/fail/skip counters from the outcomes.
func (r *SuiteResult) Tally() {
	r.Passed, r.Failed, r.Skipped = 0, 0, 0
	for _, sr := range r.Results {
		for _, o := range sr.Outcomes {
			switch o.Status {
			case cacc.StatusPass:
				r.Passed++
			case cacc.StatusFail:
				r.Failed++
			case cacc.StatusSkip:
				r.Skipped++
			}
		}
	}
}
