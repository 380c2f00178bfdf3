package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"treeval/config"
	"treeval/metrics"
	"treeval/simulator"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the accelerator model over websocket",
		Long: `Serves one accelerator model per websocket connection on /accelerator,
with Prometheus metrics on /metrics and a liveness probe on /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.cfg.Serve.Addr
			if a.addr != "" {
				addr = a.addr
			}

			reg := prometheus.NewRegistry()
			srv := &http.Server{
				Addr:    addr,
				Handler: newRouter(a.cfg, reg),
			}
			return runServer(cmd.Context(), srv)
		},
	}

	cmd.Flags().StringVar(&a.addr, "addr", "", "Listen address, overrides the configuration")
	return cmd
}

func newRouter(cfg config.Config, reg *prometheus.Registry) http.Handler {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Handle("/accelerator", simulator.Handler(
		simulator.WithWeightScale(cfg.Offload.WeightScale),
		simulator.WithCollector(collector),
	))
	return r
}

// runServer serves until ctx is done, then gives outstanding requests a
// deadline to complete.
func runServer(ctx context.Context, srv *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Msgf("serving accelerator model on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err

	case <-ctx.Done():
		log.Info().Msg("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msgf("graceful shutdown did not complete in %s", shutdownTimeout)
			if err := srv.Close(); err != nil {
				return err
			}
		}
		if err := <-serverErrors; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info().Msg("server stopped gracefully")
		return nil
	}
}
