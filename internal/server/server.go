// Package server is the local HTTP companion for SceneDeck.
//
// It replaces the drag-and-drop page of a browser front end: documents are
// uploaded or pasted to /api/extract, the running collection is listed and
// cleared under /api/scenes, single scenes are previewed and launched on the
// host, and open tabs follow collection changes over a websocket at /ws.
// Liveness, readiness and Prometheus metrics are served alongside.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/MrWong99/scenedeck/internal/app"
	"github.com/MrWong99/scenedeck/internal/collection"
	"github.com/MrWong99/scenedeck/internal/observe"
	"github.com/MrWong99/scenedeck/pkg/scene"
)

//go:embed static/index.html
var static embed.FS

// shutdownTimeout bounds graceful shutdown once the run context ends.
const shutdownTimeout = 10 * time.Second

// Backend is the application surface the server drives. [*app.App]
// implements it.
type Backend interface {
	ImportReader(ctx context.Context, name string, r io.Reader) (app.ImportResult, error)
	ImportPaste(ctx context.Context, text string) (app.ImportResult, error)
	Scenes() []scene.Record
	Clear(ctx context.Context) int
	Prompt(id string) (string, error)
	Launch(ctx context.Context, id string) error
	Subscribe(buffer int) (<-chan collection.Event, func())
	Ready(ctx context.Context) error
}

var _ Backend = (*app.App)(nil)

// Option configures a [Server].
type Option func(*Server)

// WithMetrics sets the metrics used by the request middleware.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxUploadBytes bounds the total size of one /api/extract request body.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithChecker adds a readiness check to /readyz.
func WithChecker(c Checker) Option {
	return func(s *Server) { s.checkers = append(s.checkers, c) }
}

// Server serves the HTTP companion.
type Server struct {
	backend        Backend
	metrics        *observe.Metrics
	metricsHandler http.Handler
	logger         *slog.Logger
	maxUpload      int64
	checkers       []Checker
	handler        http.Handler
}

// New builds the route table for backend.
func New(backend Backend, opts ...Option) *Server {
	s := &Server{
		backend:   backend,
		logger:    slog.Default(),
		maxUpload: 64 << 20,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	s.checkers = append([]Checker{{Name: "app", Check: backend.Ready}}, s.checkers...)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("GET /api/scenes", s.handleList)
	mux.HandleFunc("DELETE /api/scenes", s.handleClear)
	mux.HandleFunc("GET /api/scenes/{id}/prompt", s.handlePrompt)
	mux.HandleFunc("POST /api/scenes/{id}/launch", s.handleLaunch)
	mux.HandleFunc("GET /ws", s.handleWS)
	newHealth(s.checkers...).Register(mux)
	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}

	s.handler = observe.Middleware(s.metrics)(mux)
	return s
}

// Handler returns the root handler, wrapped in the observability middleware.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. Open websocket feeds end with ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("http companion listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("http companion stopped")
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
