package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "slip" {
		t.Errorf("expected Name=slip, got %s", cfg.Name)
	}
	if cfg.Limits.MaxEvalDepth != 2048 {
		t.Errorf("expected MaxEvalDepth=2048, got %d", cfg.Limits.MaxEvalDepth)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Limits.MaxSteps = 42
	cfg.Logging.DebugMode = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Limits.MaxSteps != 42 {
		t.Errorf("expected MaxSteps=42, got %d", loaded.Limits.MaxSteps)
	}
	if !loaded.Logging.DebugMode {
		t.Errorf("expected DebugMode=true")
	}
}

func TestConfig_LoadMissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "missing.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of missing file should not error: %v", err)
	}
	if cfg.Name != "slip" {
		t.Errorf("expected defaults to be used, got Name=%s", cfg.Name)
	}
}

func TestConfig_EnvOverride(t *testing.T) {
	t.Setenv("SLIP_DEBUG", "1")
	t.Setenv("SLIP_LOG_LEVEL", "debug")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "missing.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Logging.DebugMode {
		t.Errorf("expected SLIP_DEBUG=1 to enable debug mode")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected SLIP_LOG_LEVEL override, got %s", cfg.Logging.Level)
	}
}

func TestLimits_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.MaxEvalDepth = 1
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for too-small MaxEvalDepth")
	}
}
