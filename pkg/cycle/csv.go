package cycle

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSV column headers for drive-cycle files. These match what the simulator
// harness expects when a scenario references a speed profile.
const (
	timeHeader  = "Time (s)"
	speedHeader = "Speed (m/s)"
)

// WriteCSV writes the series in the two-column drive-cycle format.
func WriteCSV(w io.Writer, ts TimeSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{timeHeader, speedHeader}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range ts.Time {
		rec := []string{
			strconv.FormatFloat(ts.Time[i], 'g', -1, 64),
			strconv.FormatFloat(ts.Speed[i], 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write sample %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a drive-cycle file written by WriteCSV (or any file using
// the same two-column format).
func ReadCSV(r io.Reader) (TimeSeries, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return TimeSeries{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) != 2 || header[0] != timeHeader || header[1] != speedHeader {
		return TimeSeries{}, fmt.Errorf("unexpected header %v, want [%s %s]", header, timeHeader, speedHeader)
	}

	var ts TimeSeries
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return TimeSeries{}, fmt.Errorf("read row %d: %w", row, err)
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return TimeSeries{}, fmt.Errorf("row %d: bad time value %q: %w", row, rec[0], err)
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return TimeSeries{}, fmt.Errorf("row %d: bad speed value %q: %w", row, rec[1], err)
		}
		ts.Time = append(ts.Time, t)
		ts.Speed = append(ts.Speed, v)
	}
	return ts, nil
}
