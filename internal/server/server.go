package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/pitwall/internal/config"
	apperrors "github.com/zsiec/pitwall/internal/errors"
	"github.com/zsiec/pitwall/internal/health"
	"github.com/zsiec/pitwall/internal/logger"
)

const healthCheckInterval = 30 * time.Second

// Server serves the read-only telemetry API over plain HTTP, and over
// HTTP/3 when enabled.
type Server struct {
	config       *config.ServerConfig
	router       *mux.Router
	httpServer   *http.Server
	http3Server  *http3.Server
	logger       *logrus.Logger
	healthMgr    *health.Manager
	errorHandler *apperrors.ErrorHandler

	additionalRoutes []func(*mux.Router)
	routesOnce       sync.Once

	mu   sync.Mutex
	addr net.Addr
}

// New creates a new server instance. redisClient may be nil when Redis is
// disabled.
func New(cfg *config.ServerConfig, log *logrus.Logger, redisClient *redis.Client) *Server {
	s := &Server{
		config:           cfg,
		router:           mux.NewRouter(),
		logger:           log,
		healthMgr:        health.NewManager(log),
		errorHandler:     apperrors.NewErrorHandler(log),
		additionalRoutes: make([]func(*mux.Router), 0),
	}

	if redisClient != nil {
		s.healthMgr.Register(health.NewRedisChecker(redisClient))
	}

	return s
}

// Start serves until ctx is cancelled or a listener fails, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	s.setupRoutes()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.HTTPPort))
	if err != nil {
		return fmt.Errorf("failed to listen on HTTP port %d: %w", s.config.HTTPPort, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.mu.Unlock()

	errCh := make(chan error, 2)

	s.logger.WithField("addr", ln.Addr().String()).Info("Starting HTTP server")
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if s.config.EnableHTTP3 {
		if err := s.startHTTP3(errCh); err != nil {
			_ = s.httpServer.Close()
			return err
		}
	}

	go s.healthMgr.StartPeriodicChecks(ctx, healthCheckInterval)

	select {
	case err := <-errCh:
		_ = s.Shutdown(context.Background())
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

func (s *Server) startHTTP3(errCh chan<- error) error {
	cert, err := tls.LoadX509KeyPair(s.config.TLSCertFile, s.config.TLSKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificates: %w", err)
	}

	s.mu.Lock()
	s.http3Server = &http3.Server{
		Addr:    fmt.Sprintf(":%d", s.config.HTTP3Port),
		Handler: s.router,
		TLSConfig: &tls.Config{
			MinVersion:   tls.VersionTLS13,
			NextProtos:   []string{"h3"},
			Certificates: []tls.Certificate{cert},
		},
		QUICConfig: &quic.Config{
			MaxIncomingStreams:    s.config.MaxIncomingStreams,
			MaxIncomingUniStreams: s.config.MaxIncomingUniStreams,
			MaxIdleTimeout:        s.config.MaxIdleTimeout,
		},
	}
	h3 := s.http3Server
	s.mu.Unlock()

	s.logger.WithField("port", s.config.HTTP3Port).Info("Starting HTTP/3 server")
	go func() {
		if err := h3.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, quic.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP/3 server failed: %w", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops both listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer, h3 := s.httpServer, s.http3Server
	s.mu.Unlock()

	s.logger.Info("Shutting down HTTP server")

	var errs []error
	if httpServer != nil {
		if err := httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}
	// http3.Server.Close does not take a context
	if h3 != nil {
		if err := h3.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP/3 server: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.logger.Info("HTTP server shutdown complete")
	return nil
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.config.ShutdownTimeout > 0 {
		return s.config.ShutdownTimeout
	}
	return 10 * time.Second
}

// setupRoutes configures all routes. Safe to call more than once.
func (s *Server) setupRoutes() {
	s.routesOnce.Do(func() {
		s.router.Use(s.requestIDMiddleware)
		s.router.Use(logger.RequestLoggerMiddleware(s.logger))
		s.router.Use(s.recoveryMiddleware)
		s.router.Use(s.metricsMiddleware)
		s.router.Use(s.corsMiddleware)

		healthHandler := health.NewHandler(s.healthMgr)
		s.router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
		s.router.HandleFunc("/ready", healthHandler.HandleReady).Methods("GET")
		s.router.HandleFunc("/live", healthHandler.HandleLive).Methods("GET")

		s.router.HandleFunc("/version", s.handleVersion).Methods("GET")

		if s.config.DebugEndpoints {
			s.setupDebugEndpoints()
		}

		for _, registerFunc := range s.additionalRoutes {
			registerFunc(s.router)
		}

		s.router.NotFoundHandler = http.HandlerFunc(s.errorHandler.HandleNotFound)
		s.router.MethodNotAllowedHandler = http.HandlerFunc(s.errorHandler.HandleMethodNotAllowed)
	})
}

// setupDebugEndpoints registers pprof and a protocol summary
func (s *Server) setupDebugEndpoints() {
	s.logger.Info("Enabling debug endpoints")

	debug := s.router.PathPrefix("/debug").Subrouter()
	debug.HandleFunc("/pprof/", pprof.Index)
	debug.HandleFunc("/pprof/cmdline", pprof.Cmdline)
	debug.HandleFunc("/pprof/profile", pprof.Profile)
	debug.HandleFunc("/pprof/symbol", pprof.Symbol)
	debug.HandleFunc("/pprof/trace", pprof.Trace)
	debug.PathPrefix("/pprof/").HandlerFunc(pprof.Index)

	debug.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		info := map[string]interface{}{
			"protocols": map[string]bool{
				"http11": true,
				"http3":  s.config.EnableHTTP3,
			},
			"ports": map[string]int{
				"http":  s.config.HTTPPort,
				"http3": s.config.HTTP3Port,
			},
			"health":        s.healthMgr.GetResults(),
			"debug_enabled": true,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(info)
	}).Methods("GET")
}

// RegisterRoutes adds route handlers mounted when the server starts
func (s *Server) RegisterRoutes(registerFunc func(*mux.Router)) {
	s.additionalRoutes = append(s.additionalRoutes, registerFunc)
}

// RegisterHealthChecker adds a checker to /health and /ready
func (s *Server) RegisterHealthChecker(checker health.Checker) {
	s.healthMgr.Register(checker)
}

// ErrorHandler returns the handler that renders API errors.
func (s *Server) ErrorHandler() *apperrors.ErrorHandler {
	return s.errorHandler
}

// Handler returns the fully configured router.
func (s *Server) Handler() http.Handler {
	s.setupRoutes()
	return s.router
}

// Addr returns the bound HTTP address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
