package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegistry = `
scenarios:
  - name: straight_road_cacc_test
    actors:
      - name: lead
        speed_profile: highway_cycle
      - name: ego
  - name: city_stop_and_go
    actors:
      - name: lead
        speed_profile: city_cycle
      - name: ego
        speed_profile: city_cycle
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	reg, err := Load(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)
	require.Len(t, reg.Scenarios, 2)

	sc, ok := reg.Scenario("straight_road_cacc_test")
	require.True(t, ok)
	require.Len(t, sc.Actors, 2)
	assert.Equal(t, "highway_cycle", sc.Actors[0].SpeedProfile)
	assert.Empty(t, sc.Actors[1].SpeedProfile)

	_, ok = reg.Scenario("missing")
	assert.False(t, ok)
}

func TestLoadRejectsDuplicates(t *testing.T) {
	_, err := Load(writeRegistry(t, `
scenarios:
  - name: dup
    actors: []
  - name: dup
    actors: []
`))
	assert.ErrorContains(t, err, "duplicate scenario")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestProfileUsers(t *testing.T) {
	reg, err := Load(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)

	users := reg.ProfileUsers("city_cycle")
	assert.Equal(t, []string{"city_stop_and_go/lead", "city_stop_and_go/ego"}, users)
	assert.Empty(t, reg.ProfileUsers("mixed_cycle"))
}

func TestValidate(t *testing.T) {
	reg, err := Load(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)

	cycleDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cycleDir, "highway_cycle.csv"), []byte("x"), 0o644))

	// city_cycle.csv is still missing.
	err = reg.Validate(cycleDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "city_cycle")

	require.NoError(t, os.WriteFile(filepath.Join(cycleDir, "city_cycle.csv"), []byte("x"), 0o644))
	assert.NoError(t, reg.Validate(cycleDir))
}
