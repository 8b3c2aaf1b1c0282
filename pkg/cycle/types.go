package cycle

import (
	"errors"
	"fmt"
	"time"
)

// MPSToMPH converts metres per second to miles per hour.
const MPSToMPH = 2.237

// Scenario represents a drive-cycle scenario type
type Scenario string

const (
	ScenarioHighway Scenario = "highway"
	ScenarioCity    Scenario = "city"
	ScenarioMixed   Scenario = "mixed"
)

// ErrUnknownScenario is returned when a scenario type is not one of the
// recognized values. A typo in a scenario name must not produce a
// plausible-looking but wrong cycle.
var ErrUnknownScenario = errors.New("unknown scenario type")

// Scenarios lists the recognized scenario types.
func Scenarios() []Scenario {
	return []Scenario{ScenarioHighway, ScenarioCity, ScenarioMixed}
}

// ParseScenario validates a scenario name from user input.
func ParseScenario(s string) (Scenario, error) {
	switch Scenario(s) {
	case ScenarioHighway, ScenarioCity, ScenarioMixed:
		return Scenario(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScenario, s)
}

// SynthesisSpec holds the inputs for drive-cycle synthesis
type SynthesisSpec struct {
	Name     string   `json:"name,omitempty"`
	Duration float64  `json:"duration"`  // seconds
	DT       float64  `json:"dt"`        // sample interval, seconds
	MaxSpeed float64  `json:"max_speed"` // m/s
	MinSpeed float64  `json:"min_speed"` // m/s, deceleration-tail target
	Scenario Scenario `json:"scenario"`
}

// TimeSeries is a uniformly sampled speed-vs-time profile.
// Invariants: len(Time) == len(Speed), Time[0] == 0, Time strictly increasing.
type TimeSeries struct {
	Time  []float64 `json:"time"`  // seconds
	Speed []float64 `json:"speed"` // m/s
}

// Len returns the number of samples.
func (ts TimeSeries) Len() int { return len(ts.Time) }

// Stats is the fixed record of scalars derived from one TimeSeries.
// Recomputed on demand, never persisted.
type Stats struct {
	MaxSpeed        float64       `json:"max_speed_mps"`
	MaxSpeedMPH     float64       `json:"max_speed_mph"`
	MinSpeed        float64       `json:"min_speed_mps"`
	AvgSpeed        float64       `json:"avg_speed_mps"`
	MaxAcceleration float64       `json:"max_acceleration"` // m/s²
	MaxDeceleration float64       `json:"max_deceleration"` // m/s², most negative gradient
	SteadyStatePct  float64       `json:"steady_state_percentage"`
	Duration        time.Duration `json:"duration"`
}
