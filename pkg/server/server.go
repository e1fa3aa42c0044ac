package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/requery/pkg/middleware"
	"github.com/vango-dev/requery/pkg/reactive"
	"github.com/vango-dev/requery/pkg/rq"
)

//go:embed client/rq.js
var clientScript []byte

const defaultTracerName = "github.com/vango-dev/requery/pkg/server"

// Server renders an App and keeps every rendered page live over a WebSocket.
type Server struct {
	app      App
	config   *Config
	sessions *SessionManager
	upgrader websocket.Upgrader

	logger        *slog.Logger
	registerer    prometheus.Registerer
	gatherer      prometheus.Gatherer
	tracerProv    trace.TracerProvider
	tracer        trace.Tracer
	metrics       *serverMetrics
	engineMetrics *rq.Metrics

	// ctx bounds the WebSocket connections; Shutdown cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	router     http.Handler
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPrometheus sets where server and engine metrics are registered and
// what /metrics serves. The default is a private registry with the Go and
// process collectors.
func WithPrometheus(reg prometheus.Registerer, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.registerer = reg
		s.gatherer = gatherer
	}
}

// WithTracerProvider sets where event and list pass spans go. The default
// is the global OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracerProv = tp
	}
}

// New creates a server for app.
func New(app App, config *Config, opts ...Option) *Server {
	config = config.withDefaults()
	s := &Server{
		app:      app,
		config:   config,
		sessions: newSessionManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server", "app", app.Name())

	if s.registerer == nil {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		s.registerer, s.gatherer = reg, reg
	}
	if s.tracerProv == nil {
		s.tracerProv = otel.GetTracerProvider()
	}
	s.tracer = s.tracerProv.Tracer(defaultTracerName)
	s.metrics = newServerMetrics(s.registerer, config.MetricsNamespace)
	s.engineMetrics = rq.NewMetrics(
		rq.WithRegisterer(s.registerer),
		rq.WithMetricsNamespace(config.MetricsNamespace),
	)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with every route mounted.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.Recoverer,
		middleware.Logger(s.logger),
		middleware.OpenTelemetry(middleware.WithTracerProvider(s.tracerProv)),
		middleware.Prometheus(
			middleware.WithRegistry(s.registerer),
			middleware.WithNamespace(s.config.MetricsNamespace),
		),
	)
	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWebSocket)
	r.Get(ClientScriptPath, s.handleClientScript)
	r.Get("/healthz", s.handleHealth)
	if !s.config.DisableMetrics && s.gatherer != nil {
		r.Method(http.MethodGet, s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	defer reactive.ReleaseGoroutine()

	if n := s.sessions.prune(s.config.ConnectTimeout); n > 0 {
		s.logger.Debug("pruned unconnected sessions", "count", n)
	}
	sess, err := s.NewSession()
	if err != nil {
		s.logger.Error("render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := sess.Render(w); err != nil {
		s.logger.Warn("write page failed", "session", sess.ID, "error", err)
	}
}

// NewSession renders a fresh page of the app and tracks it until its
// WebSocket disconnects or it is pruned.
func (s *Server) NewSession() (*Session, error) {
	sess, err := newSession(s.app, sessionDeps{
		logger:        s.logger,
		tracer:        s.tracer,
		tracerProv:    s.tracerProv,
		metrics:       s.metrics,
		engineMetrics: s.engineMetrics,
	})
	if err != nil {
		return nil, err
	}
	s.sessions.add(sess)
	s.metrics.sessionsTotal.Inc()
	return sess, nil
}

func (s *Server) handleClientScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(clientScript)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"app":      s.app.Name(),
		"sessions": s.sessions.Count(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	defer reactive.ReleaseGoroutine()

	id := r.URL.Query().Get("session")
	sess, err := s.sessions.attach(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied.
		s.logger.Warn("websocket upgrade failed", "session", id, "error", err)
		s.sessions.Remove(id)
		return
	}

	s.metrics.activeSessions.Inc()
	defer s.metrics.activeSessions.Dec()
	defer s.sessions.Remove(id)

	s.logger.Debug("session connected", "session", id)
	c := newConnection(conn, sess, s)
	if err := c.run(s.ctx); err != nil {
		s.logger.Warn("session ended", "session", id, "error", err)
		return
	}
	s.logger.Debug("session disconnected", "session", id)
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server starting", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.ctx.Done():
			// Shutdown was called directly.
			return nil
		}
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	})
	return g.Wait()
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.cancel()
	s.sessions.Shutdown()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}
