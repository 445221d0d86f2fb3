package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"aftermarket-report/internal/api"
	"aftermarket-report/internal/api/handler"
	"aftermarket-report/pkg/router"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Serve(cmd.Context(), envFile, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to HTTP_ADDR)")
	return cmd
}

// Serve runs the HTTP API until interrupted
func Serve(ctx context.Context, envFile, addr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(envFile)
	if err != nil {
		return err
	}
	defer a.close()

	if addr == "" {
		addr = a.cfg.HTTPAddr
	}

	var runs handler.RunHistory
	if a.history != nil {
		runs = a.history
	}

	r := router.New(a.logger)
	api.RegisterRoutes(r, handler.New(a.service, runs, a.logger))
	return r.Start(ctx, addr)
}
