package cli

import (
	"context"
	"time"

	"effects-studio/internal/config"
	"effects-studio/internal/server"
	"effects-studio/internal/shutdown"
	"effects-studio/internal/studio"

	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve exposes the studio over HTTP: effect rendering, previews with
cache headers, model management and background removal, plus health
and metrics endpoints. The server drains in-flight requests on SIGINT
or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides environment)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if servePort != 0 {
		cfg.Port = servePort
	}
	log := newLogger(cfg)

	st, err := studio.New(cfg, log, false)
	if err != nil {
		return err
	}

	srv := server.NewServer(st, log)

	sd := shutdown.NewManager(log)
	sd.Register("Studio", st)
	sd.Register("HTTPServer", shutdown.Func(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server", err, nil)
		}
	}))
	sd.Listen()

	err = srv.Start()
	sd.Shutdown()
	return err
}
