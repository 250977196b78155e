package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitewizard/sitewizard/internal/handlers"
)

const shutdownGrace = 5 * time.Second

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the wizard JSON API",
		Long: `Serves every wizard step as a JSON endpoint.

Sessions live in the configured store, so a front end and the CLI can
share one wizard run.`,
		Example: `  # Listen on PORT from the environment (8888 when unset)
  sitewizard serve

  # Override the port
  sitewizard serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("port") {
				port = a.cfg.Port
			}
			server := &http.Server{
				Addr:              ":" + port,
				Handler:           a.router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			slog.Info("Sitewizard API available", "url", "http://localhost"+server.Addr, "gateway", a.cfg.GatewayURL)
			return listen(cmd.Context(), server)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on (default from PORT)")

	return cmd
}

func (a *app) router() http.Handler {
	h := handlers.New(a.wizard)
	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return h.Wrap(mux)
}

// listen runs server until ctx is cancelled, then drains it
func listen(ctx context.Context, server *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("Server stopped")
	return nil
}
