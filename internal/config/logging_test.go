package config

import "testing"

func TestLoadLogDefaults(t *testing.T) {
	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "info" {
		t.Fatalf("Level = %q, want info", cfg.Level)
	}
	if cfg.Console {
		t.Fatal("Console defaults on, want JSON output by default")
	}
	if cfg.FileMaxMB != 32 {
		t.Fatalf("FileMaxMB = %d, want 32", cfg.FileMaxMB)
	}
}

func TestLoadLogParse(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_CONSOLE", "true")
	t.Setenv("LOG_FILE_MAX_MB", "8")

	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "debug" || !cfg.Console || cfg.FileMaxMB != 8 {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
}
