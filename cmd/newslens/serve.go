package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/newslens/internal/app"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve POST /api/analyze and POST /api/validate-url until interrupted.
A missing model key is logged at startup; analysis requests then fail with a
configuration error while URL validation keeps working.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			return a.Serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "Listen address, e.g. :5000 (env PORT)")
	cmd.Flags().String("cors.origin", "", "Access-Control-Allow-Origin value")
	return cmd
}
