// Package ext implements host extension bindings (SPEC_FULL.md §11.1),
// grounded on the teacher's internal/ext package: a YAML-described
// manifest naming Go packages and functions to expose as native
// script functions. Unlike the teacher, which generates and compiles
// Go binding source via go/packages + go build, this module resolves
// bindings against a small static registry at process Initialize time
// — the embedding host never shells out to the Go toolchain.
package ext

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coucya/rolscript/internal/rerr"
)

// Config is the top-level rolscript.yaml manifest.
type Config struct {
	Deps []Dep `yaml:"deps"`
}

// Dep names one Go package and the functions bound from it.
type Dep struct {
	Pkg  string     `yaml:"pkg"`
	As   string     `yaml:"as"`
	Bind []BindSpec `yaml:"bind"`
}

// BindSpec names a single function binding within a Dep.
type BindSpec struct {
	Func string `yaml:"func"`
	As   string `yaml:"as"`
}

// LoadManifest parses a rolscript.yaml file.
func LoadManifest(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// ParseManifest parses manifest YAML already read into memory.
func ParseManifest(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, rerr.Wrap(rerr.Runtime, err, "parsing extension manifest")
	}
	return &cfg, nil
}
