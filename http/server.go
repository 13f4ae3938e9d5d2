// Package http serves the prediction form over HTTP and WebSocket.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"studentscore/ml"
	"studentscore/monitoring"
)

// Server HTTP server
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

// ServerConfig server configuration
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// DefaultServerConfig default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   1 << 20,
	}
}

// NewServer wires the API behind the middleware chain.
func NewServer(config ServerConfig, predictor *ml.Predictor, logger *zap.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      NewHandler(config, predictor, logger),
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
		logger: logger,
	}
}

// NewHandler builds the routed handler. The websocket route skips the
// timeout and body-size middleware since the connection is long lived.
func NewHandler(config ServerConfig, predictor *ml.Predictor, logger *zap.Logger) http.Handler {
	api := NewAPI(predictor, logger, monitoring.NewMetrics())

	apiMux := http.NewServeMux()
	api.Register(apiMux)

	root := http.NewServeMux()
	root.Handle("/", Chain(
		SecurityHeadersMiddleware,
		CORSMiddleware(config.AllowedOrigins),
		TimeoutMiddleware(config.Timeout),
		RequestSizeMiddleware(config.MaxBodyBytes),
	)(apiMux))
	root.HandleFunc("GET /api/ws/predict", api.handlePredictSocket)

	return Chain(
		RecoveryMiddleware(logger),
		LoggerMiddleware(logger),
	)(root)
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	s.logger.Info("websocket endpoint", zap.String("url", "ws://localhost"+s.server.Addr+"/api/ws/predict"))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}
