package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port int

	// Project
	ProjectPath string // composition snapshot file (JSON or YAML)
	MediaDir    string // root for symbolic asset lookup

	// Playback
	SyncInterval time.Duration // audio reconciliation tick
	MasterVolume float64
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port:         envInt("CLIPMILL_PORT", 8080),
		ProjectPath:  envStr("CLIPMILL_PROJECT", "project.json"),
		MediaDir:     envStr("CLIPMILL_MEDIA_DIR", "media"),
		SyncInterval: time.Duration(envInt("CLIPMILL_SYNC_INTERVAL_MS", 50)) * time.Millisecond,
		MasterVolume: envFloat("CLIPMILL_MASTER_VOLUME", 1.0),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
