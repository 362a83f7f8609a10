package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/observe"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(src *source) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /livez, /health and /health/<group>",
		Long: "Serve /livez, /health and /health/<group>.\n" +
			"With --watch, group, contributor and HTTP settings are reloaded when the\n" +
			"configuration file changes. Telemetry settings need a restart.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch && src.path == "" {
				return errors.New("--watch requires --config")
			}
			cfg, err := src.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			handler := &swapHandler{}
			if err := handler.rebuild(a, cfg); err != nil {
				return errors.Join(err, a.close(context.Background()))
			}

			ln, err := net.Listen("tcp", cfg.HTTP.Addr)
			if err != nil {
				return errors.Join(err, a.close(context.Background()))
			}

			if watch {
				go func() {
					err := config.Watch(ctx, src.path, a.obs.Logger(), func(next *config.Config) error {
						next.Observe = cfg.Observe
						return handler.rebuild(a, next)
					})
					if err != nil {
						a.obs.Logger().Error(ctx, "config watch stopped", observe.Field{Key: "error", Value: err})
					}
				}()
			}
			return serve(ctx, ln, handler, a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides http.addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the configuration file when it changes")
	return cmd
}

// swapHandler serves through the most recently built handler.
type swapHandler struct {
	current atomic.Pointer[http.Handler]
}

func (s *swapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*s.current.Load()).ServeHTTP(w, r)
}

// rebuild assembles cfg on the telemetry of a and starts serving it.
func (s *swapHandler) rebuild(a *app, cfg *config.Config) error {
	next, err := assemble(cfg, a.obs)
	if err != nil {
		return err
	}
	h, err := next.handler()
	if err != nil {
		return err
	}
	s.current.Store(&h)
	return nil
}

// serve blocks until ctx is done or the server fails, then drains
// in-flight requests and flushes telemetry.
func serve(ctx context.Context, ln net.Listener, handler http.Handler, a *app) error {
	log := a.obs.Logger()
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	log.Info(ctx, "healthd listening", observe.Field{Key: "addr", Value: ln.Addr().String()})

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}
	log.Info(shutdownCtx, "healthd stopped")
	return errors.Join(serveErr, err, a.close(shutdownCtx))
}
