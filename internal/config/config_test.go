package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Inputs = []string{"/data/run1.fast5"}
	cfg.OutputDir = "/out"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Processes != 10 {
		t.Errorf("Processes = %d, want 10", cfg.Processes)
	}
	if cfg.ReadChunkSize != 100 {
		t.Errorf("ReadChunkSize = %d, want 100", cfg.ReadChunkSize)
	}
	if cfg.SignalChunkSize != 102400 {
		t.Errorf("SignalChunkSize = %d, want 102400", cfg.SignalChunkSize)
	}
	if cfg.StatusIntervalSec != 15 {
		t.Errorf("StatusIntervalSec = %d, want 15", cfg.StatusIntervalSec)
	}
	if cfg.ColorMode != ColorAuto {
		t.Errorf("ColorMode = %q, want auto", cfg.ColorMode)
	}
	if cfg.OneToOne || cfg.OutputSplit || cfg.ForceOverwrite || cfg.Recursive {
		t.Error("boolean modes must default to off")
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad color", func(c *Config) { c.ColorMode = "sepia" }},
		{"zero processes", func(c *Config) { c.Processes = 0 }},
		{"zero read chunk", func(c *Config) { c.ReadChunkSize = 0 }},
		{"zero signal chunk", func(c *Config) { c.SignalChunkSize = 0 }},
		{"zero interval", func(c *Config) { c.StatusIntervalSec = 0 }},
		{"no inputs", func(c *Config) { c.Inputs = nil }},
		{"no output", func(c *Config) { c.OutputDir = "" }},
	}
	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestParseFlags_Positional(t *testing.T) {
	cfg := DefaultConfig()
	err := parseFlags(&cfg, []string{"-p", "4", "a.fast5", "b.fast5", "out/"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Processes != 4 {
		t.Errorf("Processes = %d, want 4", cfg.Processes)
	}
	if len(cfg.Inputs) != 2 || cfg.Inputs[0] != "a.fast5" || cfg.Inputs[1] != "b.fast5" {
		t.Errorf("Inputs = %v", cfg.Inputs)
	}
	if cfg.OutputDir != "out" {
		t.Errorf("OutputDir = %q, want out (trailing slash stripped)", cfg.OutputDir)
	}
}

func TestParseFlags_TooFewArgs(t *testing.T) {
	cfg := DefaultConfig()
	if err := parseFlags(&cfg, []string{"only-one-arg"}); err == nil {
		t.Error("expected error with a single positional arg")
	}
}

func TestParseFlags_ModesAndColor(t *testing.T) {
	cfg := DefaultConfig()
	err := parseFlags(&cfg, []string{
		"--output-one-to-one", "--output-split", "-f", "-r", "--no-color",
		"in.fast5", "out",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !cfg.OneToOne || !cfg.OutputSplit || !cfg.ForceOverwrite || !cfg.Recursive {
		t.Error("mode flags not applied")
	}
	if cfg.ColorMode != ColorNever {
		t.Errorf("ColorMode = %q, want never", cfg.ColorMode)
	}
}

func TestLoadFile_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pod5convert.yaml")
	yaml := "processes: 4\nread_chunk_size: 50\ncolor: never\noutput_split: true\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := LoadFile(&cfg, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Processes != 4 || cfg.ReadChunkSize != 50 || !cfg.OutputSplit {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.ColorMode != ColorNever {
		t.Errorf("ColorMode = %q, want never", cfg.ColorMode)
	}
	// Keys the file does not set keep their defaults.
	if cfg.SignalChunkSize != 102400 {
		t.Errorf("SignalChunkSize = %d, want default", cfg.SignalChunkSize)
	}
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("proccesses: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	if err := LoadFile(&cfg, path); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestParseFlags_ConfigFileThenFlagPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("processes: 4\nverbose: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	err := parseFlags(&cfg, []string{"--config", path, "-p", "2", "in.fast5", "out"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Processes != 2 {
		t.Errorf("Processes = %d, want 2 (flag beats file)", cfg.Processes)
	}
	if !cfg.Verbose {
		t.Error("Verbose from file not applied")
	}
}

func TestConfigFileArg(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"--config", "x.yaml", "in", "out"}, "x.yaml"},
		{[]string{"--config=x.yaml"}, "x.yaml"},
		{[]string{"-config", "x.yaml"}, "x.yaml"},
		{[]string{"-p", "4", "in", "out"}, ""},
		{[]string{"--", "--config", "x.yaml"}, ""},
	}
	for _, tc := range cases {
		if got := configFileArg(tc.args); got != tc.want {
			t.Errorf("configFileArg(%v) = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestNormalizeDirArg(t *testing.T) {
	if got := NormalizeDirArg("/out/"); got != "/out" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeDirArg("/"); got != "/" {
		t.Errorf("root must be preserved, got %q", got)
	}
}
