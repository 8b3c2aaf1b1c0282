package cycle

import (
	"time"
)

// SteadyAccelThreshold is the acceleration magnitude (m/s²) below which a
// sample counts as steady state.
const SteadyAccelThreshold = 0.5

// Validate computes summary statistics for a drive cycle. It is a pure
// computation over the series; printing and plotting belong to the caller.
func Validate(ts TimeSeries) Stats {
	n := ts.Len()
	if n == 0 {
		return Stats{}
	}

	dt := meanStep(ts.Time)
	accel := Gradient(ts.Speed, dt)

	stats := Stats{
		MaxSpeed: ts.Speed[0],
		MinSpeed: ts.Speed[0],
		Duration: time.Duration((ts.Time[n-1] - ts.Time[0]) * float64(time.Second)),
	}

	var speedSum float64
	for _, v := range ts.Speed {
		speedSum += v
		if v > stats.MaxSpeed {
			stats.MaxSpeed = v
		}
		if v < stats.MinSpeed {
			stats.MinSpeed = v
		}
	}
	stats.AvgSpeed = speedSum / float64(n)
	stats.MaxSpeedMPH = stats.MaxSpeed * MPSToMPH

	steady := 0
	stats.MaxAcceleration = accel[0]
	stats.MaxDeceleration = accel[0]
	for _, a := range accel {
		if a > stats.MaxAcceleration {
			stats.MaxAcceleration = a
		}
		if a < stats.MaxDeceleration {
			stats.MaxDeceleration = a
		}
		if a < SteadyAccelThreshold && a > -SteadyAccelThreshold {
			steady++
		}
	}
	stats.SteadyStatePct = float64(steady) / float64(n) * 100

	return stats
}

// meanStep returns the mean of consecutive time differences, tolerating
// floating-point jitter in the grid. Returns 1 for series too short to
// difference, so downstream division stays defined.
func meanStep(times []float64) float64 {
	if len(times) < 2 {
		return 1
	}
	return (times[len(times)-1] - times[0]) / float64(len(times)-1)
}

// Gradient computes the numerical derivative of values on a uniform grid of
// spacing dt: central differences inside, one-sided at both ends.
func Gradient(values []float64, dt float64) []float64 {
	n := len(values)
	grad := make([]float64, n)
	if n < 2 || dt == 0 {
		return grad
	}
	grad[0] = (values[1] - values[0]) / dt
	grad[n-1] = (values[n-1] - values[n-2]) / dt
	for i := 1; i < n-1; i++ {
		grad[i] = (values[i+1] - values[i-1]) / (2 * dt)
	}
	return grad
}
