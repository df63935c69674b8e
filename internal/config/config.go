// Package config loads default settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

var ErrInvalidPort = errors.New("port must be between 1 and 65535")

// File holds the settings a config file may supply. Zero values mean
// "not set" and leave the built-in defaults in place.
type File struct {
	Port             int     `yaml:"port,omitempty"`
	Frequency        float64 `yaml:"frequency,omitempty"`
	Duration         uint    `yaml:"duration,omitempty"`
	Quiet            bool    `yaml:"quiet,omitempty"`
	Timestamp        bool    `yaml:"timestamp,omitempty"`
	ShowFailuresOnly bool    `yaml:"show_failures_only,omitempty"`
	NoColor          bool    `yaml:"no_color,omitempty"`
	NonInteractive   bool    `yaml:"non_interactive,omitempty"`
	JSON             bool    `yaml:"json,omitempty"`
	Pretty           bool    `yaml:"pretty,omitempty"`
	CSV              string  `yaml:"csv,omitempty"`
	DB               string  `yaml:"db,omitempty"`
	Chart            string  `yaml:"chart,omitempty"`
}

// Load reads and validates the YAML file at path. Unknown keys are rejected.
func Load(path string) (File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config %s: %w", path, err)
	}

	return Parse(content)
}

// Parse decodes YAML content into a File.
func Parse(content []byte) (File, error) {
	var f File

	if err := yaml.UnmarshalStrict(content, &f); err != nil {
		return File{}, fmt.Errorf("parse config: %w", err)
	}

	if f.Port < 0 || f.Port > 65535 {
		return File{}, fmt.Errorf("config port %d: %w", f.Port, ErrInvalidPort)
	}

	return f, nil
}
