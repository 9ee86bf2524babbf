package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"effects-studio/internal/imageio"
	"effects-studio/internal/models"

	"github.com/spf13/cobra"
)

var (
	previewConfigPath string
	previewSeed       int64
	previewQuality    string
	previewOutput     string
)

var previewCmd = &cobra.Command{
	Use:   "preview <input>",
	Short: "Render effects at preview scale",
	Long: `Preview applies the effects at the reduced resolution of the chosen
quality mode and reports how long the render took. With --output the
preview is written as a JPEG at the mode's quality setting.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewConfigPath, "config", "c", "", "Path to a JSON effect config")
	previewCmd.Flags().Int64Var(&previewSeed, "seed", 0, "Override the random seed")
	previewCmd.Flags().StringVarP(&previewQuality, "quality", "q", string(models.QualityBalanced), "Preview quality (fast, balanced, quality)")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "Write the preview JPEG to this path")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mode, err := models.ParseQualityMode(previewQuality)
	if err != nil {
		return err
	}

	st, _, err := newStudio(true)
	if err != nil {
		return err
	}
	defer st.Shutdown()

	if _, err := st.LoadFile(args[0]); err != nil {
		return err
	}

	cfg, err := loadEffectConfig(previewConfigPath, previewSeed, cmd.Flags().Changed("seed"))
	if err != nil {
		return err
	}

	result, err := st.Preview(ctx, cfg, mode)
	if err != nil {
		return err
	}
	defer result.Image.Close()

	fmt.Printf("Preview %dx%d (%s) rendered in %s, cache hit: %v\n",
		result.Image.Cols(), result.Image.Rows(), mode,
		result.Elapsed.Round(time.Millisecond), result.CacheHit)

	if previewOutput != "" {
		payload, err := imageio.EncodePreview(result.Image, mode)
		if err != nil {
			return err
		}
		if err := os.WriteFile(previewOutput, payload, 0o644); err != nil {
			return fmt.Errorf("failed to write preview: %w", err)
		}
		fmt.Printf("Wrote %s\n", previewOutput)
	}
	return nil
}
