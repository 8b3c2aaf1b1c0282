package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cacctools/drivecycle/pkg/config"
	"github.com/cacctools/drivecycle/pkg/cycle"
)

func main() {
	var (
		name      = flag.String("name", "custom_cacc", "Name for the drive cycle file (without .csv)")
		duration  = flag.Float64("duration", 100.0, "Duration in seconds")
		dt        = flag.Float64("dt", 0.02, "Sample interval in seconds (0.02 = 50Hz)")
		scenario  = flag.String("scenario", "mixed", "Scenario type (highway, city, mixed)")
		maxSpeed  = flag.Float64("max-speed", 30.0, "Maximum speed in m/s")
		minSpeed  = flag.Float64("min-speed", 5.0, "Minimum speed in m/s")
		outDir    = flag.String("out-dir", ".", "Directory to write the cycle into")
		plot      = flag.Bool("plot", false, "Write an SVG plot of the drive cycle")
		validate  = flag.Bool("validate", false, "Print drive cycle statistics and readiness checks")
		scenarios = flag.String("scenarios", "", "Optional scenarios.yaml to cross-check profile references against")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	level := slog.LevelInfo
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	scenarioType, err := cycle.ParseScenario(*scenario)
	if err != nil {
		logger.Error("Invalid scenario", "error", err)
		os.Exit(1)
	}

	spec := cycle.SynthesisSpec{
		Name:     *name,
		Duration: *duration,
		DT:       *dt,
		MaxSpeed: *maxSpeed,
		MinSpeed: *minSpeed,
		Scenario: scenarioType,
	}

	fmt.Printf("Creating %s drive cycle...\n", scenarioType)
	ts, err := cycle.Synthesize(spec)
	if err != nil {
		logger.Error("Synthesis failed", "error", err)
		os.Exit(1)
	}

	outputPath := filepath.Join(*outDir, *name+".csv")
	if err := writeCycleFile(outputPath, ts); err != nil {
		logger.Error("Failed to write drive cycle", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Drive cycle saved to: %s\n", outputPath)

	if *validate {
		printValidation(ts, *dt)
	}

	if *plot {
		plotPath := filepath.Join(*outDir, *name+"_plot.svg")
		if err := writePlotFile(plotPath, ts); err != nil {
			logger.Error("Failed to write plot", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Plot saved to: %s\n", plotPath)
	}

	if *scenarios != "" {
		checkRegistry(logger, *scenarios, *outDir, *name)
	}

	fmt.Println("\nTo use this drive cycle in scenarios.yaml, add:")
	fmt.Printf("  speed_profile: %s\n", *name)
	fmt.Println("to your actor definition.")
}

func writeCycleFile(path string, ts cycle.TimeSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := cycle.WriteCSV(f, ts); err != nil {
		return err
	}
	return f.Close()
}

func writePlotFile(path string, ts cycle.TimeSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := cycle.WritePlotSVG(f, ts); err != nil {
		return err
	}
	return f.Close()
}

func printValidation(ts cycle.TimeSeries, dt float64) {
	stats := cycle.Validate(ts)

	fmt.Println("\nValidating drive cycle...")
	fmt.Printf("Duration: %.1f seconds\n", stats.Duration.Seconds())
	fmt.Printf("Max speed: %.1f m/s (%.1f mph)\n", stats.MaxSpeed, stats.MaxSpeedMPH)
	fmt.Printf("Min speed: %.1f m/s\n", stats.MinSpeed)
	fmt.Printf("Average speed: %.1f m/s\n", stats.AvgSpeed)
	fmt.Printf("Max acceleration: %.2f m/s²\n", stats.MaxAcceleration)
	fmt.Printf("Max deceleration: %.2f m/s²\n", stats.MaxDeceleration)
	fmt.Printf("Steady state periods: %.1f%%\n", stats.SteadyStatePct)

	fmt.Println("\nCACC Requirement Checks:")
	fmt.Printf("✓ Drive cycle created with %d data points\n", ts.Len())
	fmt.Printf("✓ Time step: %.3f seconds\n", dt)
	if stats.SteadyStatePct > 30 {
		fmt.Println("✓ Sufficient steady state periods for speed-error testing")
	} else {
		fmt.Println("⚠ Limited steady state periods - may affect speed-error testing")
	}
}

// checkRegistry warns when the generated profile is not referenced by any
// scenario, and reports which scenario logs a regeneration invalidates.
func checkRegistry(logger *slog.Logger, registryPath, outDir, name string) {
	reg, err := config.Load(registryPath)
	if err != nil {
		logger.Error("Failed to load scenario registry", "error", err)
		os.Exit(1)
	}

	users := reg.ProfileUsers(name)
	if len(users) == 0 {
		logger.Warn("No scenario references this profile yet", "profile", name)
	} else {
		fmt.Println("\nScenarios using this profile (their logs need re-recording):")
		for _, u := range users {
			fmt.Printf("  %s\n", u)
		}
	}

	if err := reg.Validate(outDir); err != nil {
		logger.Warn("Scenario registry references missing profiles", "error", err)
	}
}
