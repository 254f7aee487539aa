package main

import (
	"github.com/spf13/cobra"

	"namescreen/internal/pipeline"
	"namescreen/internal/server"
)

var serveAddr string

// serveCmd exposes screening over HTTP: upload a subject list, download the
// packaged run.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the screening HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	p := pipeline.New(cfg, logger)
	return server.New(cfg, logger, p).ListenAndServe()
}
