// Package preset loads filter chain presets.
//
// A preset is a YAML file naming the shader passes of a chain in
// execution order. Shader paths are resolved relative to the preset
// file, so presets can live next to the shaders they reference.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Preset errors.
var (
	// ErrNoPasses is returned when a preset declares no shader passes.
	ErrNoPasses = errors.New("preset: no shader passes")
)

// FilterMode selects how passes sample their input when scaling.
type FilterMode string

// Supported filter modes.
const (
	FilterLinear  FilterMode = "linear"
	FilterNearest FilterMode = "nearest"
)

// Pass describes one shader pass of a chain.
type Pass struct {
	// Shader is the path to the WGSL compute shader for this pass.
	// After Load it is absolute or relative to the working directory,
	// never relative to the preset file.
	Shader string `yaml:"shader"`

	// Scale multiplies the pass input extent to produce its output
	// extent. Must be positive when given; omitted it defaults to 1.0
	// (same size).
	Scale float64 `yaml:"scale"`
}

// UnmarshalYAML rejects explicit non-positive scales, which plain
// struct decoding could not tell apart from an omitted scale.
func (p *Pass) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Shader string   `yaml:"shader"`
		Scale  *float64 `yaml:"scale"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Scale != nil && *raw.Scale <= 0 {
		return fmt.Errorf("pass scale must be positive, got %v", *raw.Scale)
	}
	p.Shader = raw.Shader
	if raw.Scale != nil {
		p.Scale = *raw.Scale
	}
	return nil
}

// Preset is a parsed filter chain description.
type Preset struct {
	// Filter is the sampling mode passes should use. Defaults to linear.
	Filter FilterMode `yaml:"filter"`

	// Passes are the shader passes in execution order.
	Passes []Pass `yaml:"passes"`
}

// Load reads and validates a preset file. Shader paths in the file are
// resolved relative to the preset's directory.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("preset: read %s: %w", path, err)
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("preset: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range p.Passes {
		if p.Passes[i].Shader != "" && !filepath.IsAbs(p.Passes[i].Shader) {
			p.Passes[i].Shader = filepath.Join(dir, p.Passes[i].Shader)
		}
	}

	if err := p.normalize(); err != nil {
		return nil, err
	}
	return &p, nil
}

// FromShader builds a single-pass preset for the given shader file.
// Used when a caller has a bare shader instead of a preset file.
func FromShader(path string) *Preset {
	return &Preset{
		Filter: FilterLinear,
		Passes: []Pass{{Shader: path, Scale: 1.0}},
	}
}

// normalize applies defaults and validates the preset.
func (p *Preset) normalize() error {
	if len(p.Passes) == 0 {
		return ErrNoPasses
	}
	if p.Filter == "" {
		p.Filter = FilterLinear
	}
	if p.Filter != FilterLinear && p.Filter != FilterNearest {
		return fmt.Errorf("preset: unknown filter mode %q", p.Filter)
	}
	for i := range p.Passes {
		if p.Passes[i].Shader == "" {
			return fmt.Errorf("preset: pass %d: missing shader path", i)
		}
		if p.Passes[i].Scale == 0 {
			p.Passes[i].Scale = 1.0
		}
		if p.Passes[i].Scale < 0 {
			return fmt.Errorf("preset: pass %d: negative scale %v", i, p.Passes[i].Scale)
		}
	}
	return nil
}
