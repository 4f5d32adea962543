// Package server exposes the live table preview over HTTP and
// WebSocket: the latest recognized frame, the active room profile and
// Prometheus metrics. The server never runs recognition itself; it
// only peeks at what the producer published.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tablesight/tablesight/internal/layout"
	"github.com/tablesight/tablesight/internal/recognition"
)

// shutdownTimeout bounds the graceful drain when Run's context is
// cancelled.
const shutdownTimeout = 10 * time.Second

// FrameSource defines the methods the server needs from the
// recognition side. *recognition.Orchestrator satisfies it.
type FrameSource interface {
	Peek() (*recognition.Frame, bool)
	Profile() *layout.Profile
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	source       FrameSource
	host         string
	port         int
	corsOrigin   string
	pushInterval time.Duration
}

// Config holds server configuration.
type Config struct {
	Host         string
	Port         int
	CORSOrigin   string
	PushInterval time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8080,
		CORSOrigin:   "*",
		PushInterval: 500 * time.Millisecond,
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", c.Port)
	}
	if c.PushInterval <= 0 {
		return errors.New("push interval must be positive")
	}
	return nil
}

// Response types for API endpoints.
type HealthResponse struct {
	Status   string `json:"status"`
	Profile  string `json:"profile,omitempty"`
	HasFrame bool   `json:"has_frame"`
	FrameAge string `json:"frame_age,omitempty"`
	Time     string `json:"time"`
}

type RegionInfo struct {
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Rect      layout.RectNorm `json:"rect"`
	Anchor    string          `json:"anchor,omitempty"`
	Semantics string          `json:"semantics,omitempty"`
}

type ProfileResponse struct {
	Name       string       `json:"name"`
	ClientSize *layout.Size `json:"client_size,omitempty"`
	Regions    []RegionInfo `json:"regions"`
	Count      int          `json:"count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a preview server over the given frame source.
func NewServer(config Config, source FrameSource) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.New("frame source is required")
	}

	return &Server{
		source:       source,
		host:         config.Host,
		port:         config.Port,
		corsOrigin:   config.CORSOrigin,
		pushInterval: config.PushInterval,
	}, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// SetupRoutes configures the HTTP routes. The WebSocket route bypasses
// the CORS middleware: the upgrader needs the raw response writer and
// checks the origin itself.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/profile", s.corsMiddleware(s.profileHandler))
	mux.HandleFunc("/frame", s.corsMiddleware(s.frameHandler))
	mux.HandleFunc("/summary", s.corsMiddleware(s.summaryHandler))
	mux.HandleFunc("/ws", s.frameWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// Run serves until ctx is cancelled, then drains connections
// gracefully. No global read/write timeouts are set because /ws holds
// long-lived connections.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:              s.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("preview server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("preview server shutdown: %w", err)
	}
	slog.Info("Preview server stopped")
	return nil
}
