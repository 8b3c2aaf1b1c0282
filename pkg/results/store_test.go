package results

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cacctools/drivecycle/pkg/cacc"
	"github.com/cacctools/drivecycle/pkg/temporal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(runID string) temporal.SuiteResult {
	started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	return temporal.SuiteResult{
		RunID: runID,
		Suite: "cacc_smoke",
		Results: []temporal.ScenarioResult{
			{
				Scenario: "straight_road",
				Outcomes: []cacc.Outcome{
					{Scenario: "straight_road", Check: cacc.CheckFDCW1, Status: cacc.StatusPass},
					{Scenario: "straight_road", Check: cacc.CheckFDCW2, Status: cacc.StatusFail,
						Reason: "speed error 12.3% exceeds 10.0%",
						Violation: &cacc.Violation{Time: 4.2, Observed: 12.3, Limit: 10,
							DesiredSpeed: 20, ActualSpeed: 17.5}},
				},
			},
			{
				Scenario: "solo",
				Outcomes: []cacc.Outcome{
					{Scenario: "solo", Check: cacc.CheckFDCW1, Status: cacc.StatusSkip,
						Reason: "no lead vehicle in log"},
				},
			},
		},
		Passed:     1,
		Failed:     1,
		Skipped:    1,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
}

func TestStoreSaveAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSuiteResult(ctx, sampleResult("run-1")))

	rec, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "cacc_smoke", rec.Suite)
	assert.Equal(t, 1, rec.Passed)
	assert.Equal(t, 1, rec.Failed)
	assert.Equal(t, 1, rec.Skipped)
	assert.Equal(t, 3*time.Second, rec.FinishedAt.Sub(rec.StartedAt))
}

func TestStoreRunOutcomes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSuiteResult(ctx, sampleResult("run-1")))

	outcomes, err := store.RunOutcomes(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, cacc.StatusPass, outcomes[0].Status)
	assert.Nil(t, outcomes[0].Violation)

	failed := outcomes[1]
	assert.Equal(t, cacc.CheckFDCW2, failed.Check)
	require.NotNil(t, failed.Violation)
	assert.Equal(t, 12.3, failed.Violation.Observed)

	assert.Equal(t, cacc.StatusSkip, outcomes[2].Status)
	assert.Equal(t, "no lead vehicle in log", outcomes[2].Reason)
}

func TestStoreAssignsRunID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSuiteResult(ctx, sampleResult("")))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.NotEmpty(t, runs[0].RunID)
}

func TestStoreListRunsOrderAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		result := sampleResult(id)
		result.FinishedAt = result.FinishedAt.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.SaveSuiteResult(ctx, result))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].RunID)
	assert.Equal(t, "run-b", runs[1].RunID)
}

func TestStoreGetRunMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetRun(context.Background(), "ghost")
	assert.Error(t, err)
}
