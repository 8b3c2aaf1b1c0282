package cycle

import (
	"bytes"
	"strings"
	"testing"
)

func TestCSVRoundTrip(t *testing.T) {
	ts := mustSynthesize(t, SynthesisSpec{
		Duration: 10, DT: 0.02, MaxSpeed: 30, MinSpeed: 5, Scenario: ScenarioCity,
	})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ts); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	if !strings.HasPrefix(buf.String(), "Time (s),Speed (m/s)\n") {
		t.Errorf("missing drive-cycle header, got %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if got.Len() != ts.Len() {
		t.Fatalf("expected %d samples, got %d", ts.Len(), got.Len())
	}
	for i := range ts.Time {
		if got.Time[i] != ts.Time[i] || got.Speed[i] != ts.Speed[i] {
			t.Fatalf("sample %d changed in round trip", i)
		}
	}
}

func TestReadCSVRejectsWrongHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("t,v\n0,1\n"))
	if err == nil {
		t.Fatal("expected header error")
	}
}

func TestReadCSVReportsBadRow(t *testing.T) {
	in := "Time (s),Speed (m/s)\n0,1\n0.02,oops\n"
	_, err := ReadCSV(strings.NewReader(in))
	if err == nil || !strings.Contains(err.Error(), "row 3") {
		t.Fatalf("expected row-attributed error, got %v", err)
	}
}
