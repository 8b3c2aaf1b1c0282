// Package suite parses CACC evaluation suite definitions written in HCL.
package suite

import (
	"fmt"
	"path"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/cacctools/drivecycle/pkg/cacc"
	"github.com/cacctools/drivecycle/pkg/temporal"
)

// HCLSuite represents the HCL suite structure
type HCLSuite struct {
	Suite     string        `hcl:"suite"`
	LogDir    string        `hcl:"log_dir,optional"`
	Scenarios []HCLScenario `hcl:"scenario,block"`
}

// HCLScenario represents one scenario block
type HCLScenario struct {
	Name             string   `hcl:"name,label"`
	Log              *string  `hcl:"log,optional"` // defaults to <name>.csv
	Checks           []string `hcl:"checks,optional"`
	SetupTrim        *int     `hcl:"setup_trim,optional"`
	SteadyAccel      *float64 `hcl:"steady_accel,optional"`
	MinDesiredSpeed  *float64 `hcl:"min_desired_speed,optional"`
	MaxSpeedErrorPct *float64 `hcl:"max_speed_error_pct,optional"`
}

// ParseSuite parses HCL content into a temporal.SuiteRequest. The suite's
// log_dir is folded into each scenario's log path so the request is
// self-contained.
func ParseSuite(hclContent string) (*temporal.SuiteRequest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(hclContent), "suite.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	var hclSuite HCLSuite
	diags = gohcl.DecodeBody(file.Body, evalContext(), &hclSuite)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}

	if hclSuite.Suite == "" {
		return nil, fmt.Errorf("suite name must not be empty")
	}

	request := &temporal.SuiteRequest{
		Suite:     hclSuite.Suite,
		Scenarios: make([]temporal.ScenarioRequest, 0, len(hclSuite.Scenarios)),
	}

	for _, sc := range hclSuite.Scenarios {
		logName := sc.Name + ".csv"
		if sc.Log != nil {
			logName = *sc.Log
		}
		if hclSuite.LogDir != "" {
			logName = path.Join(hclSuite.LogDir, logName)
		}

		for _, check := range sc.Checks {
			if check != cacc.CheckFDCW1 && check != cacc.CheckFDCW2 {
				return nil, fmt.Errorf("scenario %q: unknown check %q", sc.Name, check)
			}
		}

		var bounds cacc.Bounds
		if sc.SetupTrim != nil {
			bounds.SetupTrim = *sc.SetupTrim
		}
		if sc.SteadyAccel != nil {
			bounds.SteadyAccel = *sc.SteadyAccel
		}
		if sc.MinDesiredSpeed != nil {
			bounds.MinDesiredSpeed = *sc.MinDesiredSpeed
		}
		if sc.MaxSpeedErrorPct != nil {
			bounds.MaxSpeedErrorPct = *sc.MaxSpeedErrorPct
		}

		request.Scenarios = append(request.Scenarios, temporal.ScenarioRequest{
			Name:   sc.Name,
			Log:    logName,
			Checks: sc.Checks,
			Bounds: bounds,
		})
	}

	return request, nil
}

// evalContext provides helper functions available inside suite files.
// mph(x) converts a speed in m/s, so thresholds can be written in the units
// the requirement formulas use.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"mph": function.New(&function.Spec{
				Params: []function.Parameter{
					{
						Name: "speed_mps",
						Type: cty.Number,
					},
				},
				Type: function.StaticReturnType(cty.Number),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					v, _ := args[0].AsBigFloat().Float64()
					return cty.NumberFloatVal(v * cacc.MPSToMPH), nil
				},
			}),
		},
	}
}

// IsHCL attempts to detect if the given content is in HCL format
func IsHCL(content []byte) bool {
	_, err := hclsyntax.ParseConfig(content, "", hcl.Pos{Line: 1, Column: 1})
	return err == nil
}
