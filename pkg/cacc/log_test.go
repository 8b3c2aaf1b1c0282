package cacc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLogCSV = `time,ego_speed,ACTOR_ego_x,ACTOR_lead_x,ACTOR_lead_speed
0.00,0.0,0.0,30.0,10.0
0.02,0.5,0.01,30.2,10.0
0.04,1.0,0.03,30.4,10.0
`

func TestReadLog(t *testing.T) {
	log, err := ReadLog(strings.NewReader(sampleLogCSV), "straight_road_cacc_test")
	require.NoError(t, err)

	assert.Equal(t, 3, log.Len())
	assert.Equal(t, "straight_road_cacc_test", log.Scenario)
	assert.True(t, log.HasActor(LeadActor))
	assert.True(t, log.HasActor(EgoActor))
	assert.False(t, log.HasActor("follower"))
	assert.Nil(t, log.DesiredSpeed)

	leadX, err := log.ActorColumn(LeadActor, "x")
	require.NoError(t, err)
	assert.Equal(t, []float64{30.0, 30.2, 30.4}, leadX)

	_, err = log.ActorColumn(LeadActor, "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACTOR_lead_y")
}

func TestReadLogMissingRequiredColumn(t *testing.T) {
	_, err := ReadLog(strings.NewReader("time,speed\n0,1\n"), "s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ego_speed")
}

func TestReadLogAttributesBadValue(t *testing.T) {
	in := "time,ego_speed,ACTOR_lead_x\n0,1,2\n0.02,1,nan?\n"
	_, err := ReadLog(strings.NewReader(in), "s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACTOR_lead_x")
	assert.Contains(t, err.Error(), "row 3")
}

func TestReadLogMalformedActorColumn(t *testing.T) {
	_, err := ReadLog(strings.NewReader("time,ego_speed,ACTOR_lead\n0,1,2\n"), "s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACTOR_lead")
}

func TestTrim(t *testing.T) {
	log, err := ReadLog(strings.NewReader(sampleLogCSV), "s")
	require.NoError(t, err)

	trimmed := log.Trim(1)
	assert.Equal(t, 2, trimmed.Len())
	assert.Equal(t, 0.02, trimmed.Time[0])
	leadSpeed, err := trimmed.ActorColumn(LeadActor, "speed")
	require.NoError(t, err)
	assert.Len(t, leadSpeed, 2)

	// Over-trim clamps to empty rather than panicking.
	assert.Equal(t, 0, log.Trim(10).Len())
	// Non-positive trim returns the log unchanged.
	assert.Equal(t, 3, log.Trim(0).Len())
}
