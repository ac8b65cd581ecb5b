// Package api exposes the chat question-answering HTTP surface and
// composes the session store, context builder, and completion provider
// per request.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/harun/askd/internal/metrics"
	"github.com/harun/askd/pkg/history"
	"github.com/harun/askd/pkg/provider"
)

// Server is the chat API HTTP server.
type Server struct {
	options        ServerOptions
	server         *http.Server
	store          *history.Store
	completions    provider.Provider
	metrics        *metrics.Metrics
	broadcaster    *Broadcaster
	logger         zerolog.Logger
	startTime      time.Time
	isShuttingDown bool
	shutdownMu     sync.RWMutex
	inFlightReqs   sync.WaitGroup
}

// NewServer creates a new API server.
func NewServer(options ServerOptions, store *history.Store, completions provider.Provider, m *metrics.Metrics, logger zerolog.Logger) (*Server, error) {
	if options.Port == 0 {
		options.Port = 3000
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}
	if options.ShutdownTimeout == 0 {
		options.ShutdownTimeout = 30 * time.Second
	}

	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if completions == nil {
		return nil, fmt.Errorf("completion provider is required")
	}
	if m == nil {
		return nil, fmt.Errorf("metrics are required")
	}

	return &Server{
		options:     options,
		store:       store,
		completions: completions,
		metrics:     m,
		broadcaster: NewBroadcaster(logger),
		logger:      logger,
		startTime:   time.Now(),
	}, nil
}

// routes builds the request mux. Split out so handler tests can serve
// it through httptest without binding a socket.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ask", s.wrap(http.MethodPost, s.handleAsk))
	mux.HandleFunc("/history", s.wrap(http.MethodGet, s.handleHistory))
	mux.HandleFunc("/sessions", s.wrap(http.MethodGet, s.handleSessions))
	mux.HandleFunc("/generate-session", s.wrap(http.MethodGet, s.handleGenerateSession))
	mux.HandleFunc("/clear-all-history", s.wrap(http.MethodPost, s.handleClearAll))
	mux.HandleFunc("/health", s.wrap(http.MethodGet, s.handleHealth))
	mux.HandleFunc("/events", s.wrap(http.MethodGet, s.handleEvents))
	mux.Handle("/metrics", s.metrics.Handler())

	return mux
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.options.Host, s.options.Port),
		Handler: s.routes(),
	}

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Msg("Starting API server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	return nil
}

// Stop gracefully stops the server, waiting for in-flight requests.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down API server")

	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("All in-flight requests completed")
	case <-time.After(s.options.ShutdownTimeout):
		s.logger.Warn().Msg("Shutdown timeout reached, forcing close")
	}

	s.broadcaster.CloseAll()

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}

	s.logger.Info().Msg("API server stopped")
	return nil
}

// wrap applies the per-request plumbing shared by every endpoint:
// shutdown guard, in-flight tracking, method check, request id, and
// the panic-to-JSON-500 boundary.
func (s *Server) wrap(method string, h func(http.ResponseWriter, *http.Request, zerolog.Logger)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.shutdownMu.RLock()
		if s.isShuttingDown {
			s.shutdownMu.RUnlock()
			writeError(w, http.StatusServiceUnavailable, "Server is shutting down")
			return
		}
		s.shutdownMu.RUnlock()

		s.inFlightReqs.Add(1)
		defer s.inFlightReqs.Done()

		if r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		requestID, _ := gonanoid.New()
		logger := s.logger.With().
			Str("requestId", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		defer func() {
			if rec := recover(); rec != nil {
				logger.Error().Interface("panic", rec).Msg("Unexpected error while handling request")
				writeError(w, http.StatusInternalServerError, fmt.Sprintf("Unexpected error: %T: %v", rec, rec))
			}
		}()

		h(w, r, logger)
	}
}
