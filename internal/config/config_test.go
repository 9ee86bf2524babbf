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
	if cfg.PreviewCacheSize != 32 {
		t.Errorf("PreviewCacheSize = %d, want 32", cfg.PreviewCacheSize)
	}
	if cfg.DefaultSeed != 1337 {
		t.Errorf("DefaultSeed = %d, want 1337", cfg.DefaultSeed)
	}
	if cfg.ModelCacheDir == "" {
		t.Error("ModelCacheDir should never be empty")
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %v, want 60s", cfg.RequestTimeout)
	}
	if cfg.LocalModelsDir != "models" {
		t.Errorf("LocalModelsDir = %q, want models", cfg.LocalModelsDir)
	}
	if cfg.MemoryLimitBytes != 2048*1024*1024 {
		t.Errorf("MemoryLimitBytes = %d, want 2 GB", cfg.MemoryLimitBytes)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("EFFECTS_STUDIO_PORT", "9090")
	t.Setenv("EFFECTS_STUDIO_LOG_LEVEL", "debug")
	t.Setenv("EFFECTS_STUDIO_PREVIEW_CACHE_SIZE", "8")
	t.Setenv("EFFECTS_STUDIO_LOCAL_MODELS_DIR", "/srv/weights")
	t.Setenv("EFFECTS_STUDIO_MEMORY_LIMIT_MB", "512")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.PreviewCacheSize != 8 {
		t.Errorf("PreviewCacheSize = %d, want 8", cfg.PreviewCacheSize)
	}
	if cfg.LocalModelsDir != "/srv/weights" {
		t.Errorf("LocalModelsDir = %q, want /srv/weights", cfg.LocalModelsDir)
	}
	if cfg.MemoryLimitBytes != 512*1024*1024 {
		t.Errorf("MemoryLimitBytes = %d, want 512 MB", cfg.MemoryLimitBytes)
	}
}

func TestUnparsableIntFallsBack(t *testing.T) {
	t.Setenv("EFFECTS_STUDIO_PORT", "not-a-number")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want fallback 8080", cfg.Port)
	}
}
