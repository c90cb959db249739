// Package server exposes the feeding assistant over HTTP. Chat turns
// stream back to the client as Server-Sent Events; the remaining
// endpoints are small JSON reads.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yoyofushi/feedbot/src/aisdk"
	"github.com/yoyofushi/feedbot/src/executor"
)

// DefaultAddr is where the server listens when Config.Addr is blank.
const DefaultAddr = ":8080"

const shutdownGrace = 5 * time.Second

// TurnRunner is the engine surface the server drives. *executor.Service
// implements it; handler tests substitute a scripted runner.
type TurnRunner interface {
	RunTurn(ctx context.Context, req *executor.TurnRequest, sink executor.EventSink) error
	Messages(conversationID string) []aisdk.Message
}

// Config carries the dependencies for New.
type Config struct {
	// Addr is the listen address, DefaultAddr when blank.
	Addr string

	// Engine runs chat turns and serves conversation history.
	Engine TurnRunner

	// Tools is the registered tool catalog served by /api/agent/tools.
	Tools []*aisdk.ChatTool

	Logger *slog.Logger
}

// Server is the HTTP front of the engine.
type Server struct {
	engine TurnRunner
	tools  []*aisdk.ChatTool
	logger *slog.Logger
	http   *http.Server
}

// New validates the config and wires up the route table.
func New(config Config) (*Server, error) {
	if config.Engine == nil {
		return nil, ErrEngineRequired
	}
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Server{
		engine: config.Engine,
		tools:  config.Tools,
		logger: config.Logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/agent/chat", s.handleChat)
	mux.HandleFunc("/api/agent/conversations/", s.handleConversationMessages)
	mux.HandleFunc("/api/agent/tools", s.handleTools)

	s.http = &http.Server{
		Addr:              config.Addr,
		Handler:           s.withRequestID(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the root handler. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run listens on the configured address and blocks until ctx is
// canceled or the listener fails. Cancellation drains in-flight
// requests for a short grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// withRequestID tags every request with a uuid, echoes it in the
// X-Request-ID header, and logs the request once served.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request served",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
