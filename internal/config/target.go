package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// CompilationTarget describes the machine the program is compiled for.
// It sizes the pointer-width primitive types of the top-level environment.
type CompilationTarget struct {
	Name             string `yaml:"name" toml:"name"`
	PointerSize      int    `yaml:"pointerSize" toml:"pointerSize"`
	PointerAlignment int    `yaml:"pointerAlignment,omitempty" toml:"pointerAlignment"`
}

var builtinTargets = map[string]CompilationTarget{
	"x86":     {Name: "x86", PointerSize: 4, PointerAlignment: 4},
	"x86_64":  {Name: "x86_64", PointerSize: 8, PointerAlignment: 8},
	"aarch64": {Name: "aarch64", PointerSize: 8, PointerAlignment: 8},
	"riscv64": {Name: "riscv64", PointerSize: 8, PointerAlignment: 8},
	"wasm32":  {Name: "wasm32", PointerSize: 4, PointerAlignment: 4},
}

const DefaultTargetName = "x86_64"

// DefaultTarget returns the target used when none is configured.
func DefaultTarget() CompilationTarget {
	return builtinTargets[DefaultTargetName]
}

// TargetNamed returns one of the built-in targets.
func TargetNamed(name string) (CompilationTarget, error) {
	target, ok := builtinTargets[strings.ToLower(name)]
	if !ok {
		return CompilationTarget{}, errors.Errorf("unknown compilation target %q (known: %s)", name, strings.Join(TargetNames(), ", "))
	}
	return target, nil
}

// TargetNames lists the built-in target names in order.
func TargetNames() []string {
	names := make([]string, 0, len(builtinTargets))
	for name := range builtinTargets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadTarget reads a target description from a .yaml/.yml or .toml file.
func LoadTarget(path string) (CompilationTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CompilationTarget{}, errors.Wrapf(err, "reading target file %s", path)
	}
	return ParseTarget(filepath.Ext(path), data)
}

// ParseTarget decodes a target description in the format named by ext.
func ParseTarget(ext string, data []byte) (CompilationTarget, error) {
	var target CompilationTarget
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &target); err != nil {
			return CompilationTarget{}, errors.Wrap(err, "parsing yaml target")
		}
	case ".toml":
		if err := toml.Unmarshal(data, &target); err != nil {
			return CompilationTarget{}, errors.Wrap(err, "parsing toml target")
		}
	default:
		return CompilationTarget{}, errors.Errorf("unsupported target file format %q", ext)
	}
	if err := target.Validate(); err != nil {
		return CompilationTarget{}, err
	}
	return target, nil
}

// Validate checks the target and fills defaulted fields.
func (t *CompilationTarget) Validate() error {
	if t.Name == "" {
		return errors.New("target name is required")
	}
	switch t.PointerSize {
	case 2, 4, 8:
	default:
		return errors.Errorf("target %s: unsupported pointer size %d", t.Name, t.PointerSize)
	}
	if t.PointerAlignment == 0 {
		t.PointerAlignment = t.PointerSize
	}
	return nil
}
