package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	towerhttp "github.com/aretw0/towerbench/pkg/adapters/http"
	"github.com/aretw0/towerbench/pkg/config"
	"github.com/aretw0/towerbench/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServeOptions configures the HTTP turn API.
type ServeOptions struct {
	Config config.Config
	Port   int
	Debug  bool
}

// Serve runs the HTTP turn API until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	cfg := opts.Config
	logger := createLogger(opts.Debug)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	engine, err := createEngine(ctx, cfg, logger, opts.Debug, metrics.Hooks())
	if err != nil {
		return err
	}
	st, err := createStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	handler := towerhttp.NewHandler(engine, createSessionManager(st, logger),
		towerhttp.WithLogger(logger),
		towerhttp.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}
