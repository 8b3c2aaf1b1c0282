package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/cacctools/drivecycle/pkg/suite"
	"github.com/cacctools/drivecycle/pkg/temporal"
)

func main() {
	// Set up logging
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Define command line flags
	var (
		path        string
		address     string
		namespace   string
		displayJSON bool
		local       bool
		logDir      string
	)

	flag.StringVar(&path, "path", "", "Path to suite HCL file or directory (required)")
	flag.StringVar(&address, "address", "localhost:7233", "Address of Temporal server")
	flag.StringVar(&namespace, "namespace", "default", "Temporal namespace")
	flag.BoolVar(&displayJSON, "json", false, "Display results as JSON")
	flag.BoolVar(&local, "local", false, "Evaluate in-process instead of through Temporal")
	flag.StringVar(&logDir, "log-dir", ".", "Directory containing scenario logs (local mode)")
	flag.Parse()

	// Validate required parameters
	if path == "" {
		logger.Error("Path parameter is required")
		flag.Usage()
		os.Exit(1)
	}

	// Determine if path is a file or directory
	fileInfo, err := os.Stat(path)
	if err != nil {
		logger.Error("Failed to access path", "error", err)
		os.Exit(1)
	}

	var suiteFiles []string
	if fileInfo.IsDir() {
		logger.Info("Processing directory", "path", path)
		suiteFiles, err = findSuiteFiles(path)
		if err != nil {
			logger.Error("Failed to read directory", "error", err)
			os.Exit(1)
		}
		if len(suiteFiles) == 0 {
			logger.Error("No suite files found in directory")
			os.Exit(1)
		}
	} else {
		if !strings.HasSuffix(path, ".hcl") {
			logger.Error("File does not have .hcl extension", "path", path)
			os.Exit(1)
		}
		suiteFiles = []string{path}
	}

	logger.Info("Found suite files", "count", len(suiteFiles))

	var c client.Client
	if !local {
		c, err = client.Dial(client.Options{
			HostPort:  address,
			Namespace: namespace,
		})
		if err != nil {
			logger.Error("Unable to create Temporal client", "error", err)
			os.Exit(1)
		}
		defer c.Close()
	}

	ctx := context.Background()

	anyFailed := false
	for _, file := range suiteFiles {
		logger.Info("Processing file", "file", file)

		content, err := os.ReadFile(file)
		if err != nil {
			logger.Error("Failed to read file", "file", file, "error", err)
			os.Exit(1)
		}

		request, err := suite.ParseSuite(string(content))
		if err != nil {
			logger.Error("Failed to parse suite", "file", file, "error", err)
			os.Exit(1)
		}

		var result *temporal.SuiteResult
		if local {
			result, err = evaluateLocal(ctx, logger, logDir, *request)
		} else {
			result, err = evaluateRemote(ctx, c, *request)
		}
		if err != nil {
			logger.Error("Suite evaluation failed", "file", file, "error", err)
			os.Exit(1)
		}

		displayResult(result, displayJSON, logger)
		if result.Failed > 0 {
			anyFailed = true
		}
	}

	if anyFailed {
		os.Exit(1)
	}
}

// findSuiteFiles finds all suite HCL files in a directory
func findSuiteFiles(dirPath string) ([]string, error) {
	var files []string

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".hcl") {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// evaluateRemote runs the suite through the Temporal evaluation workflow.
func evaluateRemote(ctx context.Context, c client.Client, request temporal.SuiteRequest) (*temporal.SuiteResult, error) {
	options := client.StartWorkflowOptions{
		ID:        temporal.GenerateSuiteWorkflowID(request.Suite),
		TaskQueue: temporal.DefaultTaskQueue,
	}

	run, err := c.ExecuteWorkflow(ctx, options, temporal.SuiteWorkflow, request)
	if err != nil {
		return nil, fmt.Errorf("failed to execute suite workflow: %w", err)
	}

	var result *temporal.SuiteResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to get suite result: %w", err)
	}
	return result, nil
}

// evaluateLocal runs every scenario in-process, without a Temporal server.
// Useful on a developer machine right after a simulation run.
func evaluateLocal(ctx context.Context, logger *slog.Logger, logDir string, request temporal.SuiteRequest) (*temporal.SuiteResult, error) {
	activities := temporal.NewActivitiesImpl(logger, temporal.NewFSLogSource(logDir), nil)

	result := &temporal.SuiteResult{
		Suite:     request.Suite,
		StartedAt: time.Now().UTC(),
	}
	for _, sc := range request.Scenarios {
		scenarioResult, err := activities.EvaluateScenarioActivity(ctx, sc)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		result.Results = append(result.Results, *scenarioResult)
	}
	result.FinishedAt = time.Now().UTC()
	result.Tally()
	return result, nil
}

// displayResult shows the suite result in human-readable or JSON format
func displayResult(result *temporal.SuiteResult, jsonOutput bool, logger *slog.Logger) {
	if jsonOutput {
		resultJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Error("Failed to marshal result to JSON", "error", err)
			fmt.Printf("%+v\n", result)
		} else {
			fmt.Println(string(resultJSON))
		}
		return
	}

	fmt.Printf("Suite: %s\n", result.Suite)
	for _, sc := range result.Results {
		fmt.Printf("  Scenario: %s\n", sc.Scenario)
		for _, o := range sc.Outcomes {
			fmt.Printf("    %-6s %s", o.Check, strings.ToUpper(string(o.Status)))
			if o.Reason != "" {
				fmt.Printf("  (%s)", o.Reason)
			}
			fmt.Println()
			if o.Violation != nil {
				fmt.Printf("           at t=%.2fs: observed %.2f, limit %.2f\n",
					o.Violation.Time, o.Violation.Observed, o.Violation.Limit)
			}
		}
	}
	fmt.Printf("Passed: %d  Failed: %d  Skipped: %d\n", result.Passed, result.Failed, result.Skipped)
}
