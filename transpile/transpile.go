// Package transpile compiles WGSL shader source to other shader
// representations through naga.
//
// Supported targets are SPIR-V binaries, Metal Shading Language source,
// and a plain-text summary of naga's lowered IR module (useful for
// checking what a shader actually declares before wiring it into a
// chain).
package transpile

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
	"github.com/gogpu/naga/spirv"
)

// Target selects the output representation.
type Target string

// Supported targets.
const (
	TargetSPIRV Target = "spirv"
	TargetMSL   Target = "msl"
	TargetIR    Target = "ir"
)

// ParseTarget converts a CLI string into a Target.
func ParseTarget(s string) (Target, error) {
	switch Target(strings.ToLower(s)) {
	case TargetSPIRV:
		return TargetSPIRV, nil
	case TargetMSL:
		return TargetMSL, nil
	case TargetIR:
		return TargetIR, nil
	default:
		return "", fmt.Errorf("transpile: unknown target %q (want spirv, msl, or ir)", s)
	}
}

// Result holds compiled output. Binary is set for SPIR-V, Text for the
// textual targets.
type Result struct {
	Target Target
	Binary []byte
	Text   string
}

// Compile parses and lowers WGSL source, then emits the requested
// target. Errors are wrapped with the compiler stage that failed.
func Compile(source string, target Target) (*Result, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("transpile: parse: %w", err)
	}

	module, err := naga.Lower(ast)
	if err != nil {
		return nil, fmt.Errorf("transpile: lower: %w", err)
	}

	switch target {
	case TargetSPIRV:
		backend := spirv.NewBackend(spirv.DefaultOptions())
		bin, err := backend.Compile(module)
		if err != nil {
			return nil, fmt.Errorf("transpile: spirv: %w", err)
		}
		return &Result{Target: target, Binary: bin}, nil

	case TargetMSL:
		code, _, err := msl.Compile(module, msl.Options{
			LangVersion: msl.Version2_1,
		})
		if err != nil {
			return nil, fmt.Errorf("transpile: msl: %w", err)
		}
		return &Result{Target: target, Text: code}, nil

	case TargetIR:
		return &Result{Target: target, Text: summarize(module)}, nil

	default:
		return nil, fmt.Errorf("transpile: unknown target %q", target)
	}
}

// summarize renders a plain-text digest of a lowered module.
func summarize(module *ir.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "types: %d\n", len(module.Types))
	fmt.Fprintf(&b, "global variables: %d\n", len(module.GlobalVariables))
	for i, gv := range module.GlobalVariables {
		fmt.Fprintf(&b, "  [%d] name=%s space=%v binding=%v\n", i, gv.Name, gv.Space, gv.Binding)
	}
	fmt.Fprintf(&b, "functions: %d\n", len(module.Functions))
	fmt.Fprintf(&b, "entry points: %d\n", len(module.EntryPoints))
	for i, ep := range module.EntryPoints {
		if ep.Stage == ir.StageCompute {
			fmt.Fprintf(&b, "  [%d] name=%s stage=%s workgroup=%dx%dx%d\n",
				i, ep.Name, stageName(ep.Stage), ep.Workgroup[0], ep.Workgroup[1], ep.Workgroup[2])
			continue
		}
		fmt.Fprintf(&b, "  [%d] name=%s stage=%s\n", i, ep.Name, stageName(ep.Stage))
	}
	return b.String()
}

func stageName(s ir.ShaderStage) string {
	switch s {
	case ir.StageVertex:
		return "vertex"
	case ir.StageFragment:
		return "fragment"
	case ir.StageCompute:
		return "compute"
	case ir.StageTask:
		return "task"
	case ir.StageMesh:
		return "mesh"
	default:
		return "unknown"
	}
}
