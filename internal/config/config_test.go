package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Integrator.Kind != "npt" {
		t.Errorf("expected integrator npt, got %s", cfg.Integrator.Kind)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative dt", func(c *Config) { c.Dt = -0.01 }, "dt"},
		{"zero steps", func(c *Config) { c.Steps = 0 }, "steps"},
		{"zero block size", func(c *Config) { c.BlockSize = 0 }, "block_size"},
		{"zero cells", func(c *Config) { c.Lattice.Cells = 0 }, "cells"},
		{"bad integrator", func(c *Config) { c.Integrator.Kind = "verlet" }, "integrator kind"},
		{"negative tau", func(c *Config) { c.Integrator.Tau = 0 }, "tau"},
		{"zero temperature", func(c *Config) { c.Integrator.TempStart = 0 }, "temperatures"},
		{"rcut too large", func(c *Config) { c.Pair.RCut = 100 }, "half the box"},
		{"zero mesh radius", func(c *Config) {
			c.Mesh.Enabled = true
			c.Mesh.Radius = 0
		}, "mesh radius"},
		{"membrane too large for box", func(c *Config) {
			c.Mesh.Enabled = true
			c.Mesh.Radius = 10
		}, "mesh diameter"},
		{"resize window inverted", func(c *Config) {
			c.Resize.Enabled = true
			c.Resize.TStart = 100
			c.Resize.TStop = 50
		}, "t_stop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Steps = 42
	cfg.Pair.Delta = 0.25
	cfg.Integrator.Kind = "nvt"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Steps != 42 {
		t.Errorf("expected steps 42, got %d", loaded.Steps)
	}
	if loaded.Pair.Delta != 0.25 {
		t.Errorf("expected delta 0.25, got %f", loaded.Pair.Delta)
	}
	if loaded.Integrator.Kind != "nvt" {
		t.Errorf("expected integrator nvt, got %s", loaded.Integrator.Kind)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("quench")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Integrator.TempStop >= cfg.Integrator.TempStart {
		t.Error("quench should ramp the temperature down")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestMembranePreset(t *testing.T) {
	cfg := GetPreset("membrane")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if !cfg.Mesh.Enabled {
		t.Error("membrane preset must enable the mesh")
	}
	if cfg.Mesh.Stiffness <= 0 {
		t.Error("membrane preset should carry a positive bending stiffness")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	cfg := GetPreset("gas")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	original := cfg.Steps

	cfg.Steps = original + 1000
	if again := GetPreset("gas"); again.Steps != original {
		t.Errorf("preset table mutated through returned pointer: %d", again.Steps)
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Error("expected presets")
	}
}

func TestDerivedGeometry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lattice.Cells = 4
	cfg.Lattice.Spacing = 1.5

	if got := cfg.BoxLength(); got != 6.0 {
		t.Errorf("expected box length 6, got %f", got)
	}
	if got := cfg.NParticles(); got != 64 {
		t.Errorf("expected 64 particles, got %d", got)
	}
}
