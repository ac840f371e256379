package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Arena.Width != 1.0 || cfg.Arena.Depth != 1.0 || cfg.Arena.Height != 2.0 {
		t.Errorf("arena = %+v, want 1x1x2", cfg.Arena)
	}
	if cfg.Agent.StepSize != 0.15 || cfg.Agent.FootprintHalf != 0.1 || cfg.Agent.FloorZ != 0.15 {
		t.Errorf("agent = %+v", cfg.Agent)
	}
	if cfg.Energy.Initial != 200 || cfg.Energy.Decay != 0.25 || cfg.Energy.Bonus != 5 {
		t.Errorf("energy = %+v", cfg.Energy)
	}
	if cfg.Levers.Left.Y != 0.3 || cfg.Levers.Right.Y != 0.815 {
		t.Errorf("levers = %+v", cfg.Levers)
	}
	if cfg.Episode.FullReset {
		t.Error("full_reset should default to false")
	}
	if cfg.Derived.MaxX != 0.9 || cfg.Derived.MaxY != 0.9 {
		t.Errorf("derived max = (%f, %f), want (0.9, 0.9)", cfg.Derived.MaxX, cfg.Derived.MaxY)
	}
	if cfg.Derived.LogLevel != slog.LevelInfo {
		t.Errorf("log level = %v, want info", cfg.Derived.LogLevel)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := []byte("energy:\n  initial: 50\nrun:\n  steps: 7\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Energy.Initial != 50 {
		t.Errorf("initial energy = %f, want 50", cfg.Energy.Initial)
	}
	if cfg.Energy.Decay != 0.25 {
		t.Errorf("decay = %f, want default 0.25", cfg.Energy.Decay)
	}
	if cfg.Run.Steps != 7 {
		t.Errorf("steps = %d, want 7", cfg.Run.Steps)
	}
	if cfg.Derived.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.Derived.LogLevel)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"arena too small", "arena:\n  width: 0.2\n"},
		{"negative steps", "run:\n  steps: -1\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"bad log level", "log:\n  level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Default()
	cfg.Run.Steps = 42

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Run.Steps != 42 {
		t.Errorf("steps = %d, want 42", loaded.Run.Steps)
	}
	if loaded.Levers != cfg.Levers {
		t.Errorf("levers = %+v, want %+v", loaded.Levers, cfg.Levers)
	}
}

func TestInitAndCfg(t *testing.T) {
	MustInit("")
	if Cfg().Run.Steps != 100 {
		t.Errorf("steps = %d, want 100", Cfg().Run.Steps)
	}
}
