package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"effects-studio/internal/imageio"

	"github.com/spf13/cobra"
)

var (
	processConfigPath string
	processSeed       int64
)

var processCmd = &cobra.Command{
	Use:   "process <input> <output>",
	Short: "Apply effects to an image at full resolution",
	Long: `Process reads an image, applies the effects named in the config file
and writes the result. The output format follows the output file
extension. Without a config file the image passes through unchanged.`,
	Args: cobra.ExactArgs(2),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&processConfigPath, "config", "c", "", "Path to a JSON effect config")
	processCmd.Flags().Int64Var(&processSeed, "seed", 0, "Override the random seed")
}

func runProcess(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, _, err := newStudio(true)
	if err != nil {
		return err
	}
	defer st.Shutdown()

	img, err := st.LoadFile(input)
	if err != nil {
		return err
	}

	cfg, err := loadEffectConfig(processConfigPath, processSeed, cmd.Flags().Changed("seed"))
	if err != nil {
		return err
	}

	started := time.Now()
	result, err := st.ProcessFull(ctx, cfg)
	if err != nil {
		return err
	}
	defer result.Close()

	if err := imageio.Save(result, output); err != nil {
		return err
	}

	fmt.Printf("Processed %s (%dx%d) in %s\n", input, img.Width, img.Height,
		time.Since(started).Round(time.Millisecond))
	fmt.Printf("Wrote %s\n", output)
	return nil
}
