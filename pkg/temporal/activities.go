package temporal

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/cacctools/drivecycle/pkg/cacc"
)

// Activities interface defines the activities used by SuiteWorkflow
type Activities interface {
	EvaluateScenarioActivity(ctx context.Context, request ScenarioRequest) (*ScenarioResult, error)
	RecordResultsActivity(ctx context.Context, result SuiteResult) error
}

// LogSource retrieves a scenario's recorded log by file name.
type LogSource interface {
	FetchLog(ctx context.Context, name string) ([]byte, error)
}

// ResultSink persists a completed suite run.
type ResultSink interface {
	SaveSuiteResult(ctx context.Context, result SuiteResult) error
}

// ActivitiesImpl implements the Activities interface
type ActivitiesImpl struct {
	logger *slog.Logger
	logs   LogSource
	sink   ResultSink
}

// NewActivitiesImpl creates a new activities implementation. sink may be nil
// when no results store is configured.
func NewActivitiesImpl(logger *slog.Logger, logs LogSource, sink ResultSink) *ActivitiesImpl {
	return &ActivitiesImpl{logger: logger, logs: logs, sink: sink}
}

// EvaluateScenarioActivity loads one scenario log and runs the requested
// requirement checks against it.
func (a *ActivitiesImpl) EvaluateScenarioActivity(ctx context.Context, request ScenarioRequest) (*ScenarioResult, error) {
	a.logger.Info("Evaluating scenario", "scenario", request.Name, "log", request.Log)

	data, err := a.logs.FetchLog(ctx, request.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch log for scenario %s: %w", request.Name, err)
	}

	log, err := cacc.ReadLog(bytes.NewReader(data), request.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log: %w", err)
	}

	checks := request.Checks
	if len(checks) == 0 {
		checks = []string{cacc.CheckFDCW1, cacc.CheckFDCW2}
	}

	result := &ScenarioResult{Scenario: request.Name}
	for _, check := range checks {
		var outcome cacc.Outcome
		switch check {
		case cacc.CheckFDCW1:
			outcome, err = cacc.CheckFollowingDistance(log, request.Bounds)
		case cacc.CheckFDCW2:
			outcome, err = cacc.CheckSpeedError(log, request.Bounds)
		default:
			return nil, fmt.Errorf("unknown check %q for scenario %s", check, request.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", check, err)
		}
		a.logger.Info("Check finished",
			"scenario", request.Name, "check", check, "status", outcome.Status, "reason", outcome.Reason)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result, nil
}

// RecordResultsActivity persists a finished run to the results store.
func (a *ActivitiesImpl) RecordResultsActivity(ctx context.Context, result SuiteResult) error {
	if a.sink == nil {
		a.logger.Warn("No results store configured, run not persisted", "suite", result.Suite)
		return nil
	}
	if err := a.sink.SaveSuiteResult(ctx, result); err != nil {
		return fmt.Errorf("failed to save suite result: %w", err)
	}
	a.logger.Info("Recorded suite run", "suite", result.Suite, "run_id", result.RunID)
	return nil
}
