package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"content-loader/internal/diagnostic"
)

// LoadFile loads and parses a YAML schema file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// Load reads, validates and registers the schema file at path. Validation
// warnings are returned alongside the registry; errors fail the load.
func Load(path string) (*Registry, *diagnostic.Diagnostics, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}

	return Build(f)
}

// Build validates f and turns it into a Registry.
func Build(f *File) (*Registry, *diagnostic.Diagnostics, error) {
	diags := Validate(f)
	if diags.HasErrors() {
		return nil, diags, fmt.Errorf("invalid schema: %w", diags.Error())
	}

	reg, err := NewRegistry(f.Types...)
	if err != nil {
		return nil, diags, err
	}

	return reg, diags, nil
}
