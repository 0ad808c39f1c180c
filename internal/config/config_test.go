package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.ProjectPath != "project.json" {
		t.Errorf("ProjectPath = %q, want project.json", cfg.ProjectPath)
	}
	if cfg.MediaDir != "media" {
		t.Errorf("MediaDir = %q, want media", cfg.MediaDir)
	}
	if cfg.SyncInterval != 50*time.Millisecond {
		t.Errorf("SyncInterval = %v, want 50ms", cfg.SyncInterval)
	}
	if cfg.MasterVolume != 1.0 {
		t.Errorf("MasterVolume = %v, want 1.0", cfg.MasterVolume)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CLIPMILL_PORT", "9090")
	t.Setenv("CLIPMILL_PROJECT", "/tmp/edit.yaml")
	t.Setenv("CLIPMILL_MEDIA_DIR", "/srv/assets")
	t.Setenv("CLIPMILL_SYNC_INTERVAL_MS", "100")
	t.Setenv("CLIPMILL_MASTER_VOLUME", "0.5")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.ProjectPath != "/tmp/edit.yaml" {
		t.Errorf("ProjectPath = %q", cfg.ProjectPath)
	}
	if cfg.MediaDir != "/srv/assets" {
		t.Errorf("MediaDir = %q", cfg.MediaDir)
	}
	if cfg.SyncInterval != 100*time.Millisecond {
		t.Errorf("SyncInterval = %v, want 100ms", cfg.SyncInterval)
	}
	if cfg.MasterVolume != 0.5 {
		t.Errorf("MasterVolume = %v, want 0.5", cfg.MasterVolume)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CLIPMILL_PORT", "not-a-port")
	t.Setenv("CLIPMILL_MASTER_VOLUME", "loud")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want default on parse failure", cfg.Port)
	}
	if cfg.MasterVolume != 1.0 {
		t.Errorf("MasterVolume = %v, want default on parse failure", cfg.MasterVolume)
	}
}
