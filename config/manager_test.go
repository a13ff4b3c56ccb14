package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if mgr.Path() != path {
		t.Fatalf("Path() = %q, want %q", mgr.Path(), path)
	}

	cfg := mgr.Get()
	cfg.BackendURL = "http://10.0.0.5:8000"
	cfg.Debounce = 500 * time.Millisecond
	if err := mgr.Update(cfg); err != nil {
		t.Fatalf("Update: %v", err)
	}

	updated := mgr.Get()
	if updated.BackendURL != cfg.BackendURL {
		t.Fatalf("expected backend %s, got %s", cfg.BackendURL, updated.BackendURL)
	}

	reopened, err := NewManager(WithConfigPath(path))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Get(); got.BackendURL != cfg.BackendURL || got.Debounce != cfg.Debounce {
		t.Fatalf("persisted config mismatch: %+v", got)
	}
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := mgr.Get()
	cfg.LogLevel = "verbose"
	if err := mgr.Update(cfg); err == nil {
		t.Fatalf("expected validation error")
	}
	if mgr.Get().LogLevel == "verbose" {
		t.Fatalf("invalid config must not be applied")
	}
}

func TestManagerUsesInitialConfig(t *testing.T) {
	initial := DefaultConfig()
	initial.BackendURL = "http://seed.local:8000"

	mgr, err := NewManager(WithConfigDir(t.TempDir()), WithInitialConfig(initial))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if mgr.Get().BackendURL != initial.BackendURL {
		t.Fatalf("initial config not used: %+v", mgr.Get())
	}
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Config, 1)
	if err := mgr.Watch(ctx, func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := mgr.Get()
	cfg.Debounce = 450 * time.Millisecond

	if err := writeConfigFile(mgr.Path(), cfg); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}

	select {
	case got := <-reloaded:
		if got.Debounce != 450*time.Millisecond {
			t.Fatalf("reloaded debounce = %v", got.Debounce)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}
}
