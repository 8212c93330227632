package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/toyz/classinfo/internal/report"
)

// shutdownTimeout bounds graceful shutdown of the report server
const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [paths...]",
		Short: "Serve scan results as JSON over HTTP",
		Long: `Scan the classpath once and serve the results until interrupted:
  GET /scan                     scan summary
  GET /methods?q=<query>        every method, or those matching a query
  GET /classes                  every class
  GET /classes/:class/methods   methods of one class`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.scan(cmd.Context(), args)
			if err != nil {
				return err
			}

			server, err := report.NewServer(app.cfg.Server.Framework, app.logger)
			if err != nil {
				return err
			}
			report.Register(server, res, app.logger)

			app.diag.Success("Serving %d method(s) with %s on %s", len(res.Methods()), server.Name(), app.cfg.Server.Addr)
			return serveUntilDone(cmd.Context(), server, app.cfg.Server.Addr)
		},
	}

	cmd.Flags().String("framework", "", "HTTP framework: gin, echo or fiber")
	cmd.Flags().String("addr", "", "Listen address")
	_ = app.v.BindPFlag("server.framework", cmd.Flags().Lookup("framework"))
	_ = app.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

// serveUntilDone runs server until it fails or ctx is cancelled
func serveUntilDone(ctx context.Context, server report.Server, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	}
}
