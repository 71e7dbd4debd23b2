package config

// YAML config file support. Only tunables belong here; paths and one-shot
// switches stay on the command line.

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML schema. Pointer fields distinguish "absent"
// from zero values so the file only overrides what it sets.
type fileConfig struct {
	Processes         *int    `yaml:"processes"`
	ReadChunkSize     *int    `yaml:"read_chunk_size"`
	SignalChunkSize   *int    `yaml:"signal_chunk_size"`
	OneToOne          *bool   `yaml:"output_one_to_one"`
	OutputSplit       *bool   `yaml:"output_split"`
	ForceOverwrite    *bool   `yaml:"force_overwrite"`
	Recursive         *bool   `yaml:"recursive"`
	StatusIntervalSec *int    `yaml:"status_interval_s"`
	Verbose           *bool   `yaml:"verbose"`
	Color             *string `yaml:"color"`
	LogFile           *string `yaml:"log_file"`
}

// LoadFile overlays cfg with values from a YAML config file. Unknown keys
// are rejected so typos surface instead of silently doing nothing.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Processes != nil {
		cfg.Processes = *fc.Processes
	}
	if fc.ReadChunkSize != nil {
		cfg.ReadChunkSize = *fc.ReadChunkSize
	}
	if fc.SignalChunkSize != nil {
		cfg.SignalChunkSize = *fc.SignalChunkSize
	}
	if fc.OneToOne != nil {
		cfg.OneToOne = *fc.OneToOne
	}
	if fc.OutputSplit != nil {
		cfg.OutputSplit = *fc.OutputSplit
	}
	if fc.ForceOverwrite != nil {
		cfg.ForceOverwrite = *fc.ForceOverwrite
	}
	if fc.Recursive != nil {
		cfg.Recursive = *fc.Recursive
	}
	if fc.StatusIntervalSec != nil {
		cfg.StatusIntervalSec = *fc.StatusIntervalSec
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.Color != nil {
		cfg.ColorMode = ColorMode(*fc.Color)
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	return nil
}
