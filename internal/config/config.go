// Package config loads content loader settings from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the content loader commands.
// Command-line flags override the values read from the environment.
type Config struct {
	// ContentRoot is the directory document names are resolved against.
	ContentRoot  string `env:"CONTENT_LOADER_ROOT" envDefault:"content"`
	// SchemaPath is the YAML schema file.
	SchemaPath   string `env:"CONTENT_LOADER_SCHEMA" envDefault:"schema.yml"`
	// TypesPattern, when set, loads the schema from annotated Go types
	// instead of SchemaPath.
	TypesPattern string `env:"CONTENT_LOADER_TYPES"`
	// DBPath is the SQLite database. Empty keeps objects in memory.
	DBPath       string `env:"CONTENT_LOADER_DB"`
	// FilesDir receives generated sample files.
	FilesDir     string `env:"CONTENT_LOADER_FILES" envDefault:"files"`

	ExistenceCheck  bool   `env:"CONTENT_LOADER_EXISTENCE_CHECK"`
	TypeKey         string `env:"CONTENT_LOADER_TYPE_KEY" envDefault:"entity"`
	DirectivePolicy string `env:"CONTENT_LOADER_DIRECTIVE_POLICY" envDefault:"abort"`
	MatchPolicy     string `env:"CONTENT_LOADER_MATCH_POLICY" envDefault:"first"`

	DryRun  bool `env:"CONTENT_LOADER_DRY_RUN"`
	Verbose bool `env:"CONTENT_LOADER_VERBOSE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}

// Load returns the configuration read from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
