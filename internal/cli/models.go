package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"effects-studio/internal/config"
	"effects-studio/internal/session"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage segmentation model weights",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available models and their cache state",
	RunE:  runModelsList,
}

var modelsFetchCmd = &cobra.Command{
	Use:   "fetch <id>",
	Short: "Download a model's weights into the local cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsFetch,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsFetchCmd)
}

func runModelsList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	catalog, err := session.LoadCatalog()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tCACHED\tSPECIALTY")
	for _, m := range catalog.List() {
		cached := "no"
		if stat, err := os.Stat(filepath.Join(cfg.ModelCacheDir, m.File)); err == nil && stat.Size() > 0 {
			cached = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f MB\t%s\t%s\n",
			m.ID, m.DisplayName, float64(m.SizeBytes)/(1024*1024), cached, m.Specialty)
	}
	return w.Flush()
}

func runModelsFetch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := session.LoadCatalog()
	if err != nil {
		return err
	}
	info, err := catalog.Get(args[0])
	if err != nil {
		return err
	}

	downloader := session.NewDownloader(cfg.ModelCacheDir, cfg.LocalModelsDir, cfg.DownloadTimeout, true, log)
	path, err := downloader.EnsureLocal(ctx, info)
	if err != nil {
		return err
	}

	fmt.Printf("Weights for %s ready at %s\n", info.ID, path)
	return nil
}
