package config

import (
	"testing"
	"time"
)

func TestSyncDebounce(t *testing.T) {
	cfg := &Config{SyncDebounceMS: 250}
	if got := cfg.SyncDebounce(); got != 250*time.Millisecond {
		t.Errorf("SyncDebounce = %v", got)
	}

	// Zero and negative fall back to the default quiet period
	for _, ms := range []int{0, -5} {
		cfg.SyncDebounceMS = ms
		if got := cfg.SyncDebounce(); got != time.Second {
			t.Errorf("SyncDebounce(%d) = %v, want 1s", ms, got)
		}
	}
}

func TestLoadReturnsDefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL == "" {
		t.Error("default server URL missing")
	}
	if !cfg.ConfirmDelete {
		t.Error("confirm_delete should default on")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.ServerURL = "https://sync.example.com"
	cfg.SyncDebounceMS = 400
	cfg.LogLevel = "DEBUG"
	if err := cfg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ServerURL != "https://sync.example.com" {
		t.Errorf("server URL = %q", got.ServerURL)
	}
	if got.SyncDebounceMS != 400 {
		t.Errorf("debounce = %d", got.SyncDebounceMS)
	}
	if got.LogLevel != "DEBUG" {
		t.Errorf("log level = %q", got.LogLevel)
	}
}
