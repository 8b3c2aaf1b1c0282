// Package cacc evaluates recorded simulation logs against the CACC planning
// requirements: minimum following distance (FDCW-1) and steady-state speed
// error (FDCW-2).
package cacc

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column naming convention used by the simulator harness.
const (
	timeColumn         = "time"
	egoSpeedColumn     = "ego_speed"
	desiredSpeedColumn = "desired_speed"
	actorPrefix        = "ACTOR_"

	// LeadActor is the conventional name of the vehicle ahead of the ego.
	LeadActor = "lead"
	// EgoActor carries the ego's pose columns (ACTOR_ego_x etc.).
	EgoActor = "ego"
)

// ScenarioLog is one scenario's recorded time series: a named-column table
// with struct-of-slices storage. It is produced by the external simulator,
// read once, and never mutated; checks only derive values from it.
type ScenarioLog struct {
	Scenario     string
	Time         []float64
	EgoSpeed     []float64
	DesiredSpeed []float64 // commanded speed when the harness records one; nil otherwise

	actors map[string]map[string][]float64
}

// Len returns the number of samples.
func (l *ScenarioLog) Len() int { return len(l.Time) }

// HasActor reports whether any column for the named actor is present.
func (l *ScenarioLog) HasActor(name string) bool {
	return len(l.actors[name]) > 0
}

// ActorColumn returns the column for one actor field (e.g. "lead", "x").
// The error names the missing column so a malformed log is attributable.
func (l *ScenarioLog) ActorColumn(name, field string) ([]float64, error) {
	col, ok := l.actors[name][field]
	if !ok {
		return nil, fmt.Errorf("scenario %s: log has no column %s%s_%s", l.Scenario, actorPrefix, name, field)
	}
	return col, nil
}

// Trim returns a view of the log with the first n samples dropped. Column
// slices share backing storage with the original; the log is read-only by
// contract so that is safe.
func (l *ScenarioLog) Trim(n int) *ScenarioLog {
	if n <= 0 {
		return l
	}
	if n > l.Len() {
		n = l.Len()
	}
	trimmed := &ScenarioLog{
		Scenario: l.Scenario,
		Time:     l.Time[n:],
		EgoSpeed: l.EgoSpeed[n:],
		actors:   make(map[string]map[string][]float64, len(l.actors)),
	}
	if l.DesiredSpeed != nil {
		trimmed.DesiredSpeed = l.DesiredSpeed[n:]
	}
	for actor, fields := range l.actors {
		trimmed.actors[actor] = make(map[string][]float64, len(fields))
		for field, col := range fields {
			trimmed.actors[actor][field] = col[n:]
		}
	}
	return trimmed
}

// ReadLog parses a simulator log CSV. Required columns: time, ego_speed.
// ACTOR_<name>_<field> columns are grouped per actor; desired_speed is kept
// when present. Parse failures name the offending column and row.
func ReadLog(r io.Reader, scenario string) (*ScenarioLog, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: read header: %w", scenario, err)
	}

	timeIdx, egoIdx, desiredIdx := -1, -1, -1
	type actorCol struct {
		name, field string
		idx         int
	}
	var actorCols []actorCol

	for i, col := range header {
		name := strings.TrimSpace(col)
		switch name {
		case timeColumn:
			timeIdx = i
		case egoSpeedColumn:
			egoIdx = i
		case desiredSpeedColumn:
			desiredIdx = i
		default:
			if rest, ok := strings.CutPrefix(name, actorPrefix); ok {
				sep := strings.LastIndex(rest, "_")
				if sep <= 0 || sep == len(rest)-1 {
					return nil, fmt.Errorf("scenario %s: malformed actor column %q", scenario, name)
				}
				actorCols = append(actorCols, actorCol{name: rest[:sep], field: rest[sep+1:], idx: i})
			}
		}
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("scenario %s: log is missing %q column", scenario, timeColumn)
	}
	if egoIdx < 0 {
		return nil, fmt.Errorf("scenario %s: log is missing %q column", scenario, egoSpeedColumn)
	}

	log := &ScenarioLog{
		Scenario: scenario,
		actors:   make(map[string]map[string][]float64),
	}
	for _, ac := range actorCols {
		if log.actors[ac.name] == nil {
			log.actors[ac.name] = make(map[string][]float64)
		}
	}

	parse := func(rec []string, idx, row int, col string) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
		if err != nil {
			return 0, fmt.Errorf("scenario %s: row %d column %s: bad value %q", scenario, row, col, rec[idx])
		}
		return v, nil
	}

	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scenario %s: read row %d: %w", scenario, row, err)
		}

		t, err := parse(rec, timeIdx, row, timeColumn)
		if err != nil {
			return nil, err
		}
		log.Time = append(log.Time, t)

		ego, err := parse(rec, egoIdx, row, egoSpeedColumn)
		if err != nil {
			return nil, err
		}
		log.EgoSpeed = append(log.EgoSpeed, ego)

		if desiredIdx >= 0 {
			d, err := parse(rec, desiredIdx, row, desiredSpeedColumn)
			if err != nil {
				return nil, err
			}
			log.DesiredSpeed = append(log.DesiredSpeed, d)
		}

		for _, ac := range actorCols {
			v, err := parse(rec, ac.idx, row, actorPrefix+ac.name+"_"+ac.field)
			if err != nil {
				return nil, err
			}
			log.actors[ac.name][ac.field] = append(log.actors[ac.name][ac.field], v)
		}
	}

	return log, nil
}
