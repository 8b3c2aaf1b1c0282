package cacc

import (
	"fmt"
	"math"
)

// MPSToMPH converts metres per second to miles per hour, as used by the
// competition's following-distance formula.
const MPSToMPH = 2.237

// Check identifiers.
const (
	CheckFDCW1 = "fdcw1" // minimum following distance
	CheckFDCW2 = "fdcw2" // steady-state speed error
)

// Status classifies a check outcome
type Status string

const (
	StatusPass Status = "pass"
	StatusSkip Status = "skip" // requirement inapplicable to this scenario
	StatusFail Status = "fail"
)

// Violation pins a failed check to a specific sample.
type Violation struct {
	Time     float64 `json:"time"`     // seconds
	Observed float64 `json:"observed"` // measured value (distance m, or error %)
	Limit    float64 `json:"limit"`    // bound it broke

	LeadSpeedMPH float64 `json:"lead_speed_mph,omitempty"` // FDCW-1
	DesiredSpeed float64 `json:"desired_speed,omitempty"`  // FDCW-2, m/s
	ActualSpeed  float64 `json:"actual_speed,omitempty"`   // FDCW-2, m/s
}

// Outcome is the result of one requirement check against one scenario.
type Outcome struct {
	Scenario  string     `json:"scenario"`
	Check     string     `json:"check"`
	Status    Status     `json:"status"`
	Reason    string     `json:"reason,omitempty"`
	Violation *Violation `json:"violation,omitempty"`
}

// Bounds holds the numeric thresholds for the requirement checks. Suites may
// override individual values; zero-value fields fall back to defaults.
type Bounds struct {
	SetupTrim        int     `json:"setup_trim"`          // leading samples discarded as setup transient
	SteadyAccel      float64 `json:"steady_accel"`        // m/s², |a| below this is steady state
	MinDesiredSpeed  float64 `json:"min_desired_speed"`   // m/s, ignore near-stationary samples
	MaxSpeedErrorPct float64 `json:"max_speed_error_pct"` // FDCW-2 limit
	DistanceCoeff    float64 `json:"distance_coeff"`      // FDCW-1: coeff·v_mph^exp + offset
	DistanceExp      float64 `json:"distance_exp"`
	DistanceOffset   float64 `json:"distance_offset"` // metres
}

// DefaultBounds returns the competition-defined thresholds.
func DefaultBounds() Bounds {
	return Bounds{
		SetupTrim:        10,
		SteadyAccel:      0.5,
		MinDesiredSpeed:  1.0,
		MaxSpeedErrorPct: 10.0,
		DistanceCoeff:    2.8,
		DistanceExp:      0.45,
		DistanceOffset:   8.0,
	}
}

// withDefaults fills zero-valued fields from DefaultBounds.
func (b Bounds) withDefaults() Bounds {
	d := DefaultBounds()
	if b.SetupTrim == 0 {
		b.SetupTrim = d.SetupTrim
	}
	if b.SteadyAccel == 0 {
		b.SteadyAccel = d.SteadyAccel
	}
	if b.MinDesiredSpeed == 0 {
		b.MinDesiredSpeed = d.MinDesiredSpeed
	}
	if b.MaxSpeedErrorPct == 0 {
		b.MaxSpeedErrorPct = d.MaxSpeedErrorPct
	}
	if b.DistanceCoeff == 0 {
		b.DistanceCoeff = d.DistanceCoeff
	}
	if b.DistanceExp == 0 {
		b.DistanceExp = d.DistanceExp
	}
	if b.DistanceOffset == 0 {
		b.DistanceOffset = d.DistanceOffset
	}
	return b
}

// MinFollowingDistance returns the closest allowed following distance in
// metres for a lead speed given in mph: coeff·v^exp + offset.
func (b Bounds) MinFollowingDistance(leadSpeedMPH float64) float64 {
	return b.DistanceCoeff*math.Pow(leadSpeedMPH, b.DistanceExp) + b.DistanceOffset
}

// CheckFollowingDistance evaluates FDCW-1: at every sample the lead vehicle
// must be no closer in the positive x direction than the speed-dependent
// minimum. Scenarios without a lead vehicle are skipped, not failed. Errors
// are reserved for malformed logs (missing columns).
func CheckFollowingDistance(log *ScenarioLog, bounds Bounds) (Outcome, error) {
	bounds = bounds.withDefaults()
	out := Outcome{Scenario: log.Scenario, Check: CheckFDCW1}

	if !log.HasActor(LeadActor) {
		out.Status = StatusSkip
		out.Reason = "scenario has no lead vehicle"
		return out, nil
	}

	trimmed := log.Trim(bounds.SetupTrim)
	leadX, err := trimmed.ActorColumn(LeadActor, "x")
	if err != nil {
		return Outcome{}, err
	}
	egoX, err := trimmed.ActorColumn(EgoActor, "x")
	if err != nil {
		return Outcome{}, err
	}
	leadSpeed, err := trimmed.ActorColumn(LeadActor, "speed")
	if err != nil {
		return Outcome{}, err
	}

	for i := range leadX {
		distance := leadX[i] - egoX[i]
		leadMPH := leadSpeed[i] * MPSToMPH
		minAllowed := bounds.MinFollowingDistance(leadMPH)
		if distance < minAllowed {
			out.Status = StatusFail
			out.Reason = fmt.Sprintf(
				"at t=%.2fs following distance was %.2fm but minimum allowed was %.2fm (lead speed %.2f mph)",
				trimmed.Time[i], distance, minAllowed, leadMPH)
			out.Violation = &Violation{
				Time:         trimmed.Time[i],
				Observed:     distance,
				Limit:        minAllowed,
				LeadSpeedMPH: leadMPH,
			}
			return out, nil
		}
	}

	out.Status = StatusPass
	out.Reason = "all following distances at or above the minimum"
	return out, nil
}

// CheckSpeedError evaluates FDCW-2: during steady state the relative speed
// error must not exceed the bound. Desired speed is the lead vehicle's speed
// when one exists, else a recorded desired_speed column. With neither, the
// check is skipped; comparing the ego against itself would read as a pass no
// matter how badly the controller tracks.
func CheckSpeedError(log *ScenarioLog, bounds Bounds) (Outcome, error) {
	bounds = bounds.withDefaults()
	out := Outcome{Scenario: log.Scenario, Check: CheckFDCW2}

	trimmed := log.Trim(bounds.SetupTrim)
	n := trimmed.Len()
	if n < 2 {
		out.Status = StatusSkip
		out.Reason = "not enough samples after setup trim"
		return out, nil
	}

	var desired []float64
	switch {
	case log.HasActor(LeadActor):
		var err error
		desired, err = trimmed.ActorColumn(LeadActor, "speed")
		if err != nil {
			return Outcome{}, err
		}
	case trimmed.DesiredSpeed != nil:
		desired = trimmed.DesiredSpeed
	default:
		out.Status = StatusSkip
		out.Reason = "no lead vehicle and no recorded desired speed"
		return out, nil
	}

	actual := trimmed.EgoSpeed
	dt := meanStep(trimmed.Time)

	// ε guards division at near-stationary samples; the MinDesiredSpeed
	// predicate already excludes them from the steady-state set.
	const epsilon = 1e-6

	worst := -1
	var worstErr float64
	steadyFound := false
	for i := 1; i < n; i++ {
		accel := (actual[i] - actual[i-1]) / dt
		if i < n/2 || math.Abs(accel) >= bounds.SteadyAccel || desired[i] <= bounds.MinDesiredSpeed {
			continue
		}
		steadyFound = true
		errPct := math.Abs(desired[i]-actual[i]) / (desired[i] + epsilon) * 100
		if worst < 0 || errPct > worstErr {
			worst = i
			worstErr = errPct
		}
	}

	if !steadyFound {
		out.Status = StatusSkip
		out.Reason = "no steady-state samples meet the criteria"
		return out, nil
	}

	if worstErr > bounds.MaxSpeedErrorPct {
		out.Status = StatusFail
		out.Reason = fmt.Sprintf(
			"at t=%.2fs steady-state speed error was %.2f%% (desired %.2f m/s, actual %.2f m/s, limit %.1f%%)",
			trimmed.Time[worst], worstErr, desired[worst], actual[worst], bounds.MaxSpeedErrorPct)
		out.Violation = &Violation{
			Time:         trimmed.Time[worst],
			Observed:     worstErr,
			Limit:        bounds.MaxSpeedErrorPct,
			DesiredSpeed: desired[worst],
			ActualSpeed:  actual[worst],
		}
		return out, nil
	}

	out.Status = StatusPass
	out.Reason = fmt.Sprintf("maximum steady-state speed error %.2f%% (limit %.1f%%)", worstErr, bounds.MaxSpeedErrorPct)
	return out, nil
}

// meanStep returns the mean sample interval of a time column.
func meanStep(times []float64) float64 {
	if len(times) < 2 {
		return 1
	}
	return (times[len(times)-1] - times[0]) / float64(len(times)-1)
}
