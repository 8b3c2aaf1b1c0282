package cycle

import (
	"errors"
	"math"
	"testing"
)

const testDT = 0.02

func mustSynthesize(t *testing.T, spec SynthesisSpec) TimeSeries {
	t.Helper()
	ts, err := Synthesize(spec)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	return ts
}

// speedNear returns the speed at the sample closest to tSec.
func speedNear(ts TimeSeries, tSec float64) float64 {
	best := 0
	for i, tv := range ts.Time {
		if math.Abs(tv-tSec) < math.Abs(ts.Time[best]-tSec) {
			best = i
		}
	}
	return ts.Speed[best]
}

func TestSynthesizeBoundsAndGrid(t *testing.T) {
	tests := []struct {
		name     string
		scenario Scenario
		duration float64
	}{
		{"highway", ScenarioHighway, 100},
		{"city", ScenarioCity, 100},
		{"city partial cycle", ScenarioCity, 47},
		{"mixed", ScenarioMixed, 100},
		{"mixed short", ScenarioMixed, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := SynthesisSpec{
				Duration: tt.duration,
				DT:       testDT,
				MaxSpeed: 30,
				MinSpeed: 5,
				Scenario: tt.scenario,
			}
			ts := mustSynthesize(t, spec)

			if len(ts.Time) != len(ts.Speed) {
				t.Fatalf("time/speed length mismatch: %d vs %d", len(ts.Time), len(ts.Speed))
			}
			wantSamples := int(tt.duration / testDT)
			if ts.Len() != wantSamples {
				t.Errorf("expected %d samples, got %d", wantSamples, ts.Len())
			}
			if ts.Time[0] != 0 {
				t.Errorf("time must start at 0, got %v", ts.Time[0])
			}
			for i := 1; i < ts.Len(); i++ {
				step := ts.Time[i] - ts.Time[i-1]
				if step <= 0 || math.Abs(step-testDT) > 1e-9 {
					t.Fatalf("non-uniform step at %d: %v", i, step)
				}
			}
			for i, v := range ts.Speed {
				if v < 0 || v > spec.MaxSpeed {
					t.Fatalf("speed out of bounds at sample %d (t=%.2f): %v", i, ts.Time[i], v)
				}
			}
		})
	}
}

func TestHighwayPhaseBoundaries(t *testing.T) {
	spec := SynthesisSpec{Duration: 100, DT: testDT, MaxSpeed: 30, MinSpeed: 5, Scenario: ScenarioHighway}
	ts := mustSynthesize(t, spec)

	// Ramp endpoint meets cruise value at t=20s.
	if got, want := speedNear(ts, 20), 0.8*spec.MaxSpeed; math.Abs(got-want) > 0.1 {
		t.Errorf("speed at 20s: got %v, want %v", got, want)
	}
	// Following cruise value at the deceleration start, t=80s.
	if got, want := speedNear(ts, 80), 0.7*spec.MaxSpeed; math.Abs(got-want) > 0.1 {
		t.Errorf("speed at 80s: got %v, want %v", got, want)
	}
	// Start from standstill, end near the minimum speed.
	if ts.Speed[0] != 0 {
		t.Errorf("highway cycle must start at 0, got %v", ts.Speed[0])
	}
	if got := ts.Speed[ts.Len()-1]; math.Abs(got-spec.MinSpeed) > 0.1 {
		t.Errorf("final speed: got %v, want %v", got, spec.MinSpeed)
	}
}

func TestCityStopAndGoPeriodicity(t *testing.T) {
	spec := SynthesisSpec{Duration: 100, DT: testDT, MaxSpeed: 30, MinSpeed: 5, Scenario: ScenarioCity}
	ts := mustSynthesize(t, spec)

	// Vehicle is stopped at every 20s cycle boundary.
	for _, boundary := range []float64{0, 20, 40, 60, 80} {
		if got := speedNear(ts, boundary); got != 0 {
			t.Errorf("expected stop at t=%vs, got speed %v", boundary, got)
		}
	}
	// And stopped through each cycle's final quarter.
	for _, tSec := range []float64{16, 37, 58, 79} {
		if got := speedNear(ts, tSec); got != 0 {
			t.Errorf("expected stop at t=%vs, got speed %v", tSec, got)
		}
	}
	// Cruise hold reaches 0.6·max.
	if got, want := speedNear(ts, 7), 0.6*spec.MaxSpeed; math.Abs(got-want) > 0.1 {
		t.Errorf("city cruise speed: got %v, want %v", got, want)
	}
}

func TestMixedTransitions(t *testing.T) {
	spec := SynthesisSpec{Duration: 100, DT: testDT, MaxSpeed: 30, MinSpeed: 5, Scenario: ScenarioMixed}
	ts := mustSynthesize(t, spec)

	// City portion is scaled to 0.7·max.
	if got := speedNear(ts, 30); got < 0 || got > 0.7*spec.MaxSpeed {
		t.Errorf("speed at city/highway boundary out of range: %v", got)
	}
	// Highway ramp reaches max at t=50s.
	if got := speedNear(ts, 50); math.Abs(got-spec.MaxSpeed) > 0.1 {
		t.Errorf("speed at 50s: got %v, want %v", got, spec.MaxSpeed)
	}
	// Cruise holds max until 70s.
	if got := speedNear(ts, 60); math.Abs(got-spec.MaxSpeed) > 1e-9 {
		t.Errorf("speed at 60s: got %v, want %v", got, spec.MaxSpeed)
	}
}

func TestSynthesizeDeterminism(t *testing.T) {
	spec := SynthesisSpec{Duration: 60, DT: testDT, MaxSpeed: 25, MinSpeed: 3, Scenario: ScenarioHighway}
	a := mustSynthesize(t, spec)
	b := mustSynthesize(t, spec)
	for i := range a.Speed {
		if a.Speed[i] != b.Speed[i] || a.Time[i] != b.Time[i] {
			t.Fatalf("non-deterministic output at sample %d", i)
		}
	}
}

func TestSynthesizeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		spec SynthesisSpec
	}{
		{"unknown scenario", SynthesisSpec{Duration: 100, DT: testDT, MaxSpeed: 30, Scenario: "offroad"}},
		{"zero duration", SynthesisSpec{Duration: 0, DT: testDT, MaxSpeed: 30, Scenario: ScenarioCity}},
		{"zero dt", SynthesisSpec{Duration: 100, DT: 0, MaxSpeed: 30, Scenario: ScenarioCity}},
		{"zero max speed", SynthesisSpec{Duration: 100, DT: testDT, MaxSpeed: 0, Scenario: ScenarioCity}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Synthesize(tt.spec); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseScenario(t *testing.T) {
	if _, err := ParseScenario("highway"); err != nil {
		t.Errorf("highway should parse: %v", err)
	}
	_, err := ParseScenario("rally")
	if !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("expected ErrUnknownScenario, got %v", err)
	}
}
