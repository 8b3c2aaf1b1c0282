package temporal

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// DefaultTaskQueue is the task queue shared by workers and clients.
	DefaultTaskQueue = "cacc-eval-task-queue"

	// Workflow IDs
	SuiteWorkflowIDPrefix = "suite-"

	// Activity names
	EvaluateScenarioActivityName = "evaluate-scenario"
	RecordResultsActivityName    = "record-results"
)

// SuiteWorkflow evaluates every scenario in the request. Scenarios are
// independent, so each one is a separate activity execution and all of them
// run concurrently; results are gathered in request order.
func SuiteWorkflow(ctx workflow.Context, request SuiteRequest) (*SuiteResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting suite workflow", "suite", request.Suite, "scenarios", len(request.Scenarios))

	if len(request.Scenarios) == 0 {
		return nil, fmt.Errorf("suite %q has no scenarios", request.Suite)
	}

	ao := workflow.ActivityOptions{
		ScheduleToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	result := &SuiteResult{
		RunID:     workflow.GetInfo(ctx).WorkflowExecution.RunID,
		Suite:     request.Suite,
		StartedAt: workflow.Now(ctx),
	}

	// Fan out one evaluation per scenario.
	futures := make([]workflow.Future, len(request.Scenarios))
	for i, sc := range request.Scenarios {
		futures[i] = workflow.ExecuteActivity(ctx, EvaluateScenarioActivityName, sc)
	}

	for i, future := range futures {
		var sr ScenarioResult
		if err := future.Get(ctx, &sr); err != nil {
			return nil, fmt.Errorf("failed to evaluate scenario %s: %w", request.Scenarios[i].Name, err)
		}
		result.Results = append(result.Results, sr)
	}

	result.Tally()
	result.FinishedAt = workflow.Now(ctx)

	// Persistence is best-effort: a full report still goes back to the
	// caller when the results store is down.
	if err := workflow.ExecuteActivity(ctx, RecordResultsActivityName, *result).Get(ctx, nil); err != nil {
		logger.Warn("Failed to record suite results", "error", err)
	}

	logger.Info("Suite completed",
		"suite", request.Suite, "passed", result.Passed, "failed", result.Failed, "skipped", result.Skipped)
	return result, nil
}

// GenerateSuiteWorkflowID creates a workflow ID for a suite evaluation.
func GenerateSuiteWorkflowID(suite string) string {
	return fmt.Sprintf("%s%s-%d", SuiteWorkflowIDPrefix, suite, time.Now().UnixNano())
}
