package commands

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/shaderchain"
)

// testdataShader is the passthrough pass used across command tests.
const testdataShader = "../../../testdata/passthrough.wgsl"

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPresetCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.yaml")
	content := "passes:\n  - shader: a.wgsl\n  - shader: b.wgsl\n    scale: 0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "preset", path)
	if err != nil {
		t.Fatalf("preset command error = %v", err)
	}
	for _, want := range []string{"filter: linear", "passes: 2", "scale=0.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPresetCommandMissingFile(t *testing.T) {
	if _, err := runCommand(t, "preset", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("preset command error = nil, want error")
	}
}

func TestTranspileCommandSPIRV(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.spv")
	_, err := runCommand(t, "transpile", "--shader", testdataShader, "--output", outPath)
	if err != nil {
		t.Fatalf("transpile command error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 20 {
		t.Fatalf("SPIR-V output too small: %d bytes", len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[:4]); magic != 0x07230203 {
		t.Errorf("SPIR-V magic = 0x%08X", magic)
	}
}

func TestTranspileCommandHex(t *testing.T) {
	out, err := runCommand(t, "transpile", "--shader", testdataShader, "--hex")
	if err != nil {
		t.Fatalf("transpile command error = %v", err)
	}
	if !strings.Contains(out, "03 02 23 07") {
		t.Errorf("hex dump missing SPIR-V magic:\n%.200s", out)
	}
}

func TestTranspileCommandIR(t *testing.T) {
	out, err := runCommand(t, "transpile", "--shader", testdataShader, "--target", "ir")
	if err != nil {
		t.Fatalf("transpile command error = %v", err)
	}
	if !strings.Contains(out, "entry points: 1") {
		t.Errorf("IR summary missing entry point count:\n%s", out)
	}
}

func TestTranspileCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing shader file", []string{"transpile", "--shader", "no-such.wgsl"}},
		{"bad target", []string{"transpile", "--shader", testdataShader, "--target", "hlsl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCommand(t, tt.args...); err == nil {
				t.Error("command error = nil, want error")
			}
		})
	}
}

func TestRenderCommandFlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no chain source", []string{"render", "--input", "in.png"}},
		{"both chain sources", []string{"render", "--input", "in.png", "--preset", "p.yaml", "--shader", "s.wgsl"}},
		{"missing input file", []string{"render", "--shader", testdataShader, "--input", "no-such.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCommand(t, tt.args...); err == nil {
				t.Error("command error = nil, want error")
			}
		})
	}
}

func TestRenderCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.png")
	writeTestPNG(t, inPath, 32, 24)
	outPath := filepath.Join(dir, "out.png")

	_, err := runCommand(t, "render",
		"--shader", testdataShader, "--input", inPath, "--output", outPath)
	if err != nil {
		if errors.Is(err, shaderchain.ErrNoGPU) {
			t.Skipf("no GPU available: %v", err)
		}
		t.Fatalf("render command error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("render produced an empty PNG")
	}
}

func TestBenchCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.png")
	writeTestPNG(t, inPath, 16, 16)

	out, err := runCommand(t, "bench",
		"--shader", testdataShader, "--input", inPath, "--frames", "2", "--warmup", "1")
	if err != nil {
		if errors.Is(err, shaderchain.ErrNoGPU) {
			t.Skipf("no GPU available: %v", err)
		}
		t.Fatalf("bench command error = %v", err)
	}
	for _, want := range []string{"device:", "2 frames", "fps"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
