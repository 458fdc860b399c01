package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/vango-dev/pulse/internal/config"
	"github.com/vango-dev/pulse/internal/errors"
	"github.com/vango-dev/pulse/internal/logging"
	"github.com/vango-dev/pulse/pkg/bind"
	"github.com/vango-dev/pulse/pkg/instrument"
	"github.com/vango-dev/pulse/pkg/microtask"
	"github.com/vango-dev/pulse/pkg/reactive"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		configDir string
		port      int
		host      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the counter graph over HTTP and WebSocket",
		Long: `Serve the counter graph.

Settings come from pulse.json in --config, or the current directory if it
has one; otherwise defaults are used.

Examples:
  pulse serve
  pulse serve --config ./deploy --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", "", "Directory containing pulse.json")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from pulse.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from pulse.json)")

	return cmd
}

// loadConfig reads pulse.json from dir, or from the working directory when
// dir is empty and a file exists there.
func loadConfig(dir string) (*config.Config, error) {
	if dir != "" {
		return config.Load(dir)
	}
	if config.Exists(".") {
		return config.Load(".")
	}
	return config.New(), nil
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	loop := microtask.NewLoop(
		microtask.WithLogger(logger),
		microtask.WithFaultHandler(func(err error) {
			logger.Error("listener fault",
				zap.String("code", errors.FromError(err, "E103").FormatCompact()),
				zap.Error(err))
		}),
	)
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()
	go func() {
		if err := loop.Run(loopCtx); err != nil && !stderrors.Is(err, context.Canceled) {
			logger.Error("loop stopped", zap.Error(err))
		}
	}()

	var (
		observers []reactive.Observer
		registry  *prometheus.Registry
	)
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observers = append(observers, instrument.NewMetrics(
			instrument.WithRegistry(registry),
			instrument.WithNamespace(cfg.Metrics.Namespace),
		))
	}
	if cfg.Tracing.Enabled {
		observers = append(observers, instrument.NewTracer(instrument.WithTracerName(cfg.Tracing.TracerName)))
	}

	cellOpts := []reactive.Option{
		reactive.WithScheduler(loop),
		reactive.WithLogger(logger),
		reactive.WithObserver(instrument.Combine(observers...)),
	}
	if cfg.Counter.AsyncUpdates {
		cellOpts = append(cellOpts, reactive.AsyncUpdates())
	}
	if cfg.Counter.AsyncEffect {
		cellOpts = append(cellOpts, reactive.AsyncEffect())
	}

	cells := bind.NewRegistry()
	var counterErr error
	if err := loop.Do(ctx, func() {
		_, counterErr = bind.NewCounter(cells, cfg.Counter.Initial, cellOpts...)
	}); err != nil {
		return err
	}
	if counterErr != nil {
		return counterErr
	}

	bindConfig := bind.DefaultServerConfig()
	bindConfig.ReadBufferSize = cfg.Server.ReadBufferSize
	bindConfig.WriteBufferSize = cfg.Server.WriteBufferSize
	bindConfig.AllowedOrigins = cfg.Server.AllowedOrigins
	srv := bind.NewServer(loop, cells, bindConfig, logger)

	router := chi.NewRouter()
	if registry != nil {
		router.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	router.Mount("/", srv.Handler())

	httpServer := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	out := cmd.OutOrStdout()
	success(out, "Serving %d cells on http://%s", cells.Len(), cfg.Address())
	info(out, "WebSocket: ws://%s/ws", cfg.Address())
	if registry != nil {
		info(out, "Metrics:   http://%s%s", cfg.Address(), cfg.Metrics.Path)
	}

	select {
	case err := <-serveErr:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.Address(), err)
		}
	case <-ctx.Done():
		info(out, "Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	srv.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}

	loop.Close()
	select {
	case <-loop.Done():
	case <-shutdownCtx.Done():
	}
	return nil
}
