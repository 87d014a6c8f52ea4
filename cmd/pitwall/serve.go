package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zsiec/pitwall/internal/config"
	"github.com/zsiec/pitwall/internal/health"
	"github.com/zsiec/pitwall/internal/logger"
	"github.com/zsiec/pitwall/internal/server"
	"github.com/zsiec/pitwall/internal/telemetry"
	"github.com/zsiec/pitwall/internal/telemetry/publish"
	"github.com/zsiec/pitwall/internal/telemetry/registry"
	"github.com/zsiec/pitwall/pkg/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Listen for telemetry and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(&cfg.Logging, false)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, log)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	log.WithField("version", version.GetInfo().Short()).Info("Starting pitwall telemetry server")
	if cfgFile != "" {
		log.WithField("config_path", cfgFile).Debug("Configuration loaded")
	}

	rt, err := newRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}

	if err := rt.manager.Start(); err != nil {
		rt.close(log)
		return fmt.Errorf("failed to start telemetry: %w", err)
	}

	if cfg.Metrics.Enabled {
		go startMetricsServer(ctx, cfg.Metrics, log)
	}

	srv := server.New(&cfg.Server, log, rt.redis)
	srv.RegisterHealthChecker(health.NewListenerChecker(rt.manager.Listener(), cfg.Telemetry.Session.Timeout))
	handlers := telemetry.NewHandlers(rt.manager, srv.ErrorHandler(), rt.log)
	srv.RegisterRoutes(func(r *mux.Router) {
		handlers.RegisterRoutes(r)
	})

	serveErr := srv.Start(ctx)
	if serveErr != nil {
		log.WithError(serveErr).Error("Server error")
	}

	// Stopping the manager closes the registry, and with it the Redis client
	if err := rt.manager.Stop(); err != nil {
		log.WithError(err).Error("Failed to stop telemetry")
	}

	log.Info("Server shutdown complete")
	return serveErr
}

// runtime is the telemetry pipeline shared by serve and dash
type runtime struct {
	manager *telemetry.Manager
	redis   *redis.Client
	log     logger.Logger
}

func newRuntime(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*runtime, error) {
	rt := &runtime{
		log: logger.NewLogrusAdapter(logrus.NewEntry(log)),
	}

	var (
		reg registry.Registry = registry.NewMemoryRegistry()
		pub publish.Publisher = publish.NopPublisher{}
	)

	if cfg.Redis.Enabled {
		rt.redis = newRedisClient(&cfg.Redis)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rt.redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			rt.redis.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.WithField("addr", cfg.Redis.Addresses[0]).Info("Connected to Redis successfully")

		reg = registry.NewRedisRegistry(rt.redis, rt.log, cfg.Telemetry.Session.TTL)
		if cfg.Telemetry.Publish.Enabled {
			pub = publish.NewRedisPublisher(rt.redis, &cfg.Telemetry.Publish, rt.log)
		}
	}

	manager, err := telemetry.NewManager(&cfg.Telemetry, reg, pub, rt.log)
	if err != nil {
		if rt.redis != nil {
			rt.redis.Close()
		}
		return nil, fmt.Errorf("failed to create telemetry manager: %w", err)
	}
	rt.manager = manager
	return rt, nil
}

// close releases the Redis client of a runtime whose manager never started
func (rt *runtime) close(log *logrus.Logger) {
	if rt.redis == nil {
		return
	}
	if err := rt.redis.Close(); err != nil {
		log.WithError(err).Error("Failed to close Redis connection")
	}
}

// startMetricsServer serves Prometheus metrics until ctx is cancelled
func startMetricsServer(ctx context.Context, cfg config.MetricsConfig, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", srv.Addr).Info("Starting metrics server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("Metrics server error")
	}
}
