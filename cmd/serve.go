package cmd

import (
	"context"
	"net"

	"github.com/spf13/cobra"

	"headless-cms-backend/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. The storage schema is created on startup when missing.

Examples:
  cms serve                       # listen on :$PORT (default 3000)
  cms serve --addr 127.0.0.1:8080
  DATABASE_DRIVER=pgx DATABASE_URL=postgres://... cms serve
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		app, err := server.NewApp(context.Background(), cfg, log)
		if err != nil {
			return err
		}
		defer app.Close()

		addr := serveAddr
		if addr == "" {
			addr = net.JoinHostPort("", cfg.Port)
		}
		return app.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :$PORT)")
}
