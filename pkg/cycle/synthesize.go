package cycle

import (
	"fmt"
	"math"
)

// Phase boundaries, in seconds of elapsed cycle time. These mirror the
// reference cycles used for CACC controller bring-up.
const (
	highwayAccelEnd  = 20.0
	highwayCruiseEnd = 40.0
	highwayAdjustEnd = 60.0
	highwayFollowEnd = 80.0

	cityCycleDuration = 20.0
	cityAccelEnd      = 5.0
	cityCruiseEnd     = 10.0
	cityDecelEnd      = 15.0

	mixedCityEnd   = 30.0
	mixedAccelEnd  = 50.0
	mixedCruiseEnd = 70.0
)

// Synthesize builds a drive cycle for the given spec. The result is a pure
// function of the spec: same inputs, same samples.
func Synthesize(spec SynthesisSpec) (TimeSeries, error) {
	if spec.Duration <= 0 {
		return TimeSeries{}, fmt.Errorf("duration must be positive, got %v", spec.Duration)
	}
	if spec.DT <= 0 {
		return TimeSeries{}, fmt.Errorf("dt must be positive, got %v", spec.DT)
	}
	if spec.MaxSpeed <= 0 {
		return TimeSeries{}, fmt.Errorf("max speed must be positive, got %v", spec.MaxSpeed)
	}

	times := timeGrid(spec.Duration, spec.DT)

	var speeds []float64
	switch spec.Scenario {
	case ScenarioHighway:
		speeds = highwayProfile(times, spec.MaxSpeed, spec.MinSpeed)
	case ScenarioCity:
		speeds = cityProfile(times, spec.MaxSpeed)
	case ScenarioMixed:
		speeds = mixedProfile(times, spec.MaxSpeed, spec.MinSpeed)
	default:
		return TimeSeries{}, fmt.Errorf("%w: %q", ErrUnknownScenario, spec.Scenario)
	}

	clampSpeeds(speeds, 0, spec.MaxSpeed)

	return TimeSeries{Time: times, Speed: speeds}, nil
}

// timeGrid builds [0, dt, 2dt, ...) up to but not including duration.
func timeGrid(duration, dt float64) []float64 {
	n := int(math.Ceil(duration/dt - 1e-9))
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return times
}

// highwayProfile: ramp to 0.8·max, cruise, sinusoidal following adjustment,
// steady following at 0.7·max, then ramp down to minSpeed.
func highwayProfile(times []float64, maxSpeed, minSpeed float64) []float64 {
	speeds := make([]float64, len(times))

	accel := indicesWhere(times, func(t float64) bool { return t <= highwayAccelEnd })
	fillRamp(speeds, accel, 0, maxSpeed*0.8)

	cruise := indicesWhere(times, func(t float64) bool { return t > highwayAccelEnd && t <= highwayCruiseEnd })
	fillConst(speeds, cruise, maxSpeed*0.8)

	adjust := indicesWhere(times, func(t float64) bool { return t > highwayCruiseEnd && t <= highwayAdjustEnd })
	for _, i := range adjust {
		speeds[i] = maxSpeed*0.8 + 5*math.Sin(2*math.Pi*(times[i]-highwayCruiseEnd)/20)
	}

	follow := indicesWhere(times, func(t float64) bool { return t > highwayAdjustEnd && t <= highwayFollowEnd })
	fillConst(speeds, follow, maxSpeed*0.7)

	decel := indicesWhere(times, func(t float64) bool { return t > highwayFollowEnd })
	fillRamp(speeds, decel, maxSpeed*0.7, minSpeed)

	return speeds
}

// cityProfile: repeating 20s stop-and-go cycles. Ramp up, hold at 0.6·max,
// ramp down, full stop. A trailing partial cycle keeps the same cycle-local
// phase timing over whatever samples remain. The floor is always 0, not the
// caller's minimum; city driving stops at lights.
func cityProfile(times []float64, maxSpeed float64) []float64 {
	speeds := make([]float64, len(times))
	if len(times) == 0 {
		return speeds
	}

	for start := 0; start < len(times); {
		cycleStart := times[start]
		end := start
		for end < len(times) && times[end]-cycleStart < cityCycleDuration {
			end++
		}
		local := make([]float64, end-start)
		for i := start; i < end; i++ {
			local[i-start] = times[i] - cycleStart
		}

		accel := indicesWhere(local, func(t float64) bool { return t <= cityAccelEnd })
		rampInto(speeds, start, accel, 0, maxSpeed*0.6)

		cruise := indicesWhere(local, func(t float64) bool { return t > cityAccelEnd && t <= cityCruiseEnd })
		for _, i := range cruise {
			speeds[start+i] = maxSpeed * 0.6
		}

		decel := indicesWhere(local, func(t float64) bool { return t > cityCruiseEnd && t <= cityDecelEnd })
		rampInto(speeds, start, decel, maxSpeed*0.6, 0)

		// Remaining samples of the cycle are a full stop; speeds is
		// zero-initialized so nothing to write.

		start = end
	}

	return speeds
}

// mixedProfile: city driving scaled to 0.7·max, then a highway merge up to
// max, a cruise, and a final ramp down to minSpeed.
func mixedProfile(times []float64, maxSpeed, minSpeed float64) []float64 {
	speeds := make([]float64, len(times))

	city := indicesWhere(times, func(t float64) bool { return t <= mixedCityEnd })
	if len(city) > 0 {
		sub := make([]float64, len(city))
		for i, idx := range city {
			sub[i] = times[idx]
		}
		citySpeeds := cityProfile(sub, maxSpeed*0.7)
		for i, idx := range city {
			speeds[idx] = citySpeeds[i]
		}
	}

	accel := indicesWhere(times, func(t float64) bool { return t > mixedCityEnd && t <= mixedAccelEnd })
	fillRamp(speeds, accel, 0, maxSpeed)

	cruise := indicesWhere(times, func(t float64) bool { return t > mixedAccelEnd && t <= mixedCruiseEnd })
	fillConst(speeds, cruise, maxSpeed)

	decel := indicesWhere(times, func(t float64) bool { return t > mixedCruiseEnd })
	fillRamp(speeds, decel, maxSpeed, minSpeed)

	return speeds
}

// Mask and fill helpers

func indicesWhere(times []float64, pred func(float64) bool) []int {
	var idx []int
	for i, t := range times {
		if pred(t) {
			idx = append(idx, i)
		}
	}
	return idx
}

// fillRamp writes a linear ramp from start to stop across the masked samples.
// Endpoints are inclusive: the last masked sample holds exactly stop.
func fillRamp(speeds []float64, idx []int, start, stop float64) {
	rampInto(speeds, 0, idx, start, stop)
}

// rampInto is fillRamp with the mask indices offset by base, used when the
// mask was computed against a sub-slice.
func rampInto(speeds []float64, base int, idx []int, start, stop float64) {
	n := len(idx)
	if n == 0 {
		return
	}
	if n == 1 {
		speeds[base+idx[0]] = start
		return
	}
	step := (stop - start) / float64(n-1)
	for k, i := range idx {
		speeds[base+i] = start + float64(k)*step
	}
}

func fillConst(speeds []float64, idx []int, v float64) {
	for _, i := range idx {
		speeds[i] = v
	}
}

func clampSpeeds(speeds []float64, lo, hi float64) {
	for i, v := range speeds {
		if v < lo {
			speeds[i] = lo
		} else if v > hi {
			speeds[i] = hi
		}
	}
}
