// Package config loads gqlbind YAML configuration files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samwightt/gqlbind/pkg/typegen"
	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration. Generation options sit at the top level
// and apply to every target unless the target overrides them.
type File struct {
	typegen.Config `yaml:",inline"`

	// Schema is the default schema path for targets that do not set one.
	Schema  string   `yaml:"schema,omitempty"`
	Targets []Target `yaml:"targets,omitempty"`
}

// Target is one output file.
type Target struct {
	Name       string     `yaml:"name"`
	Schema     string     `yaml:"schema,omitempty"`
	Operations StringList `yaml:"operations,omitempty"`
	Package    string     `yaml:"package,omitempty"`
	Output     string     `yaml:"output"`
}

// StringList accepts either a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// Load reads and decodes the file at path. Unknown keys are errors.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a configuration document.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	for i, t := range f.Targets {
		if t.Name == "" {
			return nil, fmt.Errorf("targets[%d]: name is required", i)
		}
		if t.Output == "" {
			return nil, fmt.Errorf("target %s: output is required", t.Name)
		}
		if t.Schema == "" && f.Schema == "" {
			return nil, fmt.Errorf("target %s: no schema configured", t.Name)
		}
	}
	return &f, nil
}

// TargetConfig returns the generation options for t.
func (f *File) TargetConfig(t Target) typegen.Config {
	cfg := f.Config
	if t.Package != "" {
		cfg.Package = t.Package
	}
	return cfg
}

// TargetSchema returns the schema path for t.
func (f *File) TargetSchema(t Target) string {
	if t.Schema != "" {
		return t.Schema
	}
	return f.Schema
}
