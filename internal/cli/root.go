package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"effects-studio/internal/config"
	"effects-studio/internal/logger"
	"effects-studio/internal/models"
	"effects-studio/internal/studio"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "effects-studio",
	Short: "Apply photographic degradation effects and remove image backgrounds",
	Long: `Effects Studio renders configurable noise, blur, shake and motion
effects onto images, and removes backgrounds with bundled segmentation
models. It runs as a one-shot CLI or as an HTTP server.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initEnv)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, json)")
}

func initEnv() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// newLogger builds the logger from environment config with flag
// overrides applied.
func newLogger(cfg *config.Config) logger.Logger {
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	format := cfg.LogFormat
	if logFormat != "" {
		format = logFormat
	}
	return logger.New(format, level)
}

// newStudio wires a studio from the environment. showProgress enables
// download progress bars for interactive commands.
func newStudio(showProgress bool) (*studio.Studio, logger.Logger, error) {
	cfg := config.Load()
	log := newLogger(cfg)

	st, err := studio.New(cfg, log, showProgress)
	if err != nil {
		return nil, nil, err
	}
	return st, log, nil
}

// loadEffectConfig reads a JSON effect config over the defaults, so a
// file only names the parameters it changes.
func loadEffectConfig(path string, seed int64, seedSet bool) (*models.EffectConfig, error) {
	cfg := models.DefaultEffectConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read effect config: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse effect config: %w", err)
		}
	}
	if seedSet {
		cfg.Seed = seed
	}
	return cfg, nil
}
