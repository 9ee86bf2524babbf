package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config carries runtime settings. Every field has a default so the
// binary runs with no environment at all.
type Config struct {
	Port             int
	LogLevel         string
	LogFormat        string
	ModelCacheDir    string
	LocalModelsDir   string
	PreviewCacheSize int
	DefaultSeed      int64
	RequestTimeout   time.Duration
	DownloadTimeout  time.Duration
	MaxUploadBytes   int64
	MemoryLimitBytes int64
}

func Load() *Config {
	return &Config{
		Port:             envInt("EFFECTS_STUDIO_PORT", 8080),
		LogLevel:         envStr("EFFECTS_STUDIO_LOG_LEVEL", "info"),
		LogFormat:        envStr("EFFECTS_STUDIO_LOG_FORMAT", "console"),
		ModelCacheDir:    envStr("EFFECTS_STUDIO_MODEL_CACHE_DIR", defaultModelCacheDir()),
		LocalModelsDir:   envStr("EFFECTS_STUDIO_LOCAL_MODELS_DIR", "models"),
		PreviewCacheSize: envInt("EFFECTS_STUDIO_PREVIEW_CACHE_SIZE", 32),
		DefaultSeed:      int64(envInt("EFFECTS_STUDIO_SEED", 1337)),
		RequestTimeout:   time.Duration(envInt("EFFECTS_STUDIO_REQUEST_TIMEOUT_SEC", 60)) * time.Second,
		DownloadTimeout:  time.Duration(envInt("EFFECTS_STUDIO_DOWNLOAD_TIMEOUT_SEC", 600)) * time.Second,
		MaxUploadBytes:   int64(envInt("EFFECTS_STUDIO_MAX_UPLOAD_MB", 64)) * 1024 * 1024,
		MemoryLimitBytes: int64(envInt("EFFECTS_STUDIO_MEMORY_LIMIT_MB", 2048)) * 1024 * 1024,
	}
}

func defaultModelCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".effects-studio", "models")
	}
	return filepath.Join(base, "effects-studio", "models")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}
