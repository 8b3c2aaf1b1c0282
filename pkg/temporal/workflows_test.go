package temporal

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/cacctools/drivecycle/pkg/cacc"
)

func newSuiteTestEnv(t *testing.T, logs *MockLogSource, sink *MockResultSink) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(SuiteWorkflow)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	activities := NewActivitiesImpl(logger, logs, sink)
	env.RegisterActivityWithOptions(activities.EvaluateScenarioActivity,
		activity.RegisterOptions{Name: EvaluateScenarioActivityName})
	env.RegisterActivityWithOptions(activities.RecordResultsActivity,
		activity.RegisterOptions{Name: RecordResultsActivityName})
	return env
}

func TestSuiteWorkflow(t *testing.T) {
	logs := NewMockLogSource()
	logs.AddLog("following.csv", testLogCSV(200))
	logs.AddLog("solo.csv", []byte("time,ego_speed\n0,20\n0.02,20\n0.04,20\n"))
	sink := NewMockResultSink()

	env := newSuiteTestEnv(t, logs, sink)

	request := SuiteRequest{
		Suite: "cacc_smoke",
		Scenarios: []ScenarioRequest{
			{Name: "following", Log: "following.csv"},
			{Name: "solo", Log: "solo.csv"},
		},
	}

	env.ExecuteWorkflow(SuiteWorkflow, request)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result *SuiteResult
	require.NoError(t, env.GetWorkflowResult(&result))

	assert.Equal(t, "cacc_smoke", result.Suite)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "following", result.Results[0].Scenario)
	assert.Equal(t, "solo", result.Results[1].Scenario)
	// following passes both checks; solo skips both.
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, result.Skipped)

	// The run must also have been persisted.
	saved := sink.Saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "cacc_smoke", saved[0].Suite)
}

func TestSuiteWorkflowEmptySuite(t *testing.T) {
	env := newSuiteTestEnv(t, NewMockLogSource(), nil)

	env.ExecuteWorkflow(SuiteWorkflow, SuiteRequest{Suite: "empty"})

	require.True(t, env.IsWorkflowCompleted())
	assert.Error(t, env.GetWorkflowError())
}

func TestSuiteWorkflowFailingScenario(t *testing.T) {
	logs := NewMockLogSource()
	// Tailgating log: 5m gap at 10 m/s, far below the minimum.
	var b strings.Builder
	b.WriteString("time,ego_speed,ACTOR_ego_x,ACTOR_lead_x,ACTOR_lead_speed\n")
	for i := 0; i < 100; i++ {
		t := float64(i) * 0.02
		b.WriteString(formatRow(t, 10, 10*t, 10*t+5, 10))
	}
	logs.AddLog("tailgating.csv", []byte(b.String()))

	env := newSuiteTestEnv(t, logs, nil)

	env.ExecuteWorkflow(SuiteWorkflow, SuiteRequest{
		Suite: "regression",
		Scenarios: []ScenarioRequest{
			{Name: "tailgating", Log: "tailgating.csv", Checks: []string{cacc.CheckFDCW1}},
		},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result *SuiteResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, 1, result.Failed)
	require.NotNil(t, result.Results[0].Outcomes[0].Violation)
}

func formatRow(t, ego, egoX, leadX, leadSpeed float64) string {
	return fmt.Sprintf("%g,%g,%g,%g,%g\n", t, ego, egoX, leadX, leadSpeed)
}

func TestGenerateSuiteWorkflowID(t *testing.T) {
	id := GenerateSuiteWorkflowID("cacc_smoke")
	assert.True(t, strings.HasPrefix(id, SuiteWorkflowIDPrefix+"cacc_smoke-"))
}
