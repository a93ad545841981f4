package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaardie/emissions-api/internal/api"
	"github.com/shaardie/emissions-api/internal/api/middleware"
	"github.com/shaardie/emissions-api/internal/config"
	"github.com/shaardie/emissions-api/internal/database"
	"github.com/shaardie/emissions-api/internal/emissions"
	"github.com/shaardie/emissions-api/internal/metrics"
	"github.com/shaardie/emissions-api/internal/resilience"
	"github.com/shaardie/emissions-api/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Connects to the emission store and serves the data, ops and metrics endpoints until interrupted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.App.Port = servePort
		}
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides app.port)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger
	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.App.Environment).
		Msg("starting emissions API")

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.App.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Float64("sample_ratio", cfg.Telemetry.SampleRatio).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		return fmt.Errorf("initialize http metrics: %w", err)
	}
	prom := metrics.Init(metrics.BuildInfo{Version: Version, BuildTime: BuildTime})

	base, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	breaker := resilience.DefaultCircuitBreakerConfig("emissions-store")
	breaker.Timeout = cfg.Store.BreakerTimeout
	store := resilience.NewStore(
		metrics.NewStore(base, metrics.NewStoreMetrics(prom.Registerer())),
		breaker,
		log,
	)

	countries, err := emissions.LoadCountryTable()
	if err != nil {
		return fmt.Errorf("load country table: %w", err)
	}
	log.Info().Int("countries", countries.Len()).Msg("country table loaded")

	svc, err := emissions.NewService(emissions.ServiceConfig{
		Store:     store,
		Countries: countries,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            httpMetrics,
		Service:            svc,
		Countries:          countries,
		Store:              store,
		PromHandler:        prom.Handler(),
		CORSOrigins:        cfg.HTTP.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		RequireTLS:         cfg.HTTP.RequireTLS,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// openStore returns the configured backing store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (emissions.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn().Msg("using in-memory store, no samples will be served")
		return emissions.NewMemoryStore(nil), func() {}, nil
	default:
		pool, err := database.ConnectWithRetry(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Database).
			Msg("database connected")
		return emissions.NewPostgresStore(pool), pool.Close, nil
	}
}
