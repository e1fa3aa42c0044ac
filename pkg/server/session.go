package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/requery/internal/errors"
	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/rq"
)

// App is a page the server renders and keeps live.
type App interface {
	// Name identifies the app in logs and health checks.
	Name() string

	// Document returns a fresh document for one session.
	Document() (*dom.Document, error)

	// Mount binds the app components to doc using r.
	Mount(r *rq.Registry, doc *dom.Document) error
}

// SessionIDMeta is the name of the meta tag carrying the session id.
const SessionIDMeta = "rq-session"

// ClientScriptPath is where the browser client is served.
const ClientScriptPath = "/rq/client.js"

// Session is one rendered page and the registry that keeps it live.
// All access to the document goes through the session mutex.
type Session struct {
	ID      string
	Created time.Time

	mu        sync.Mutex
	doc       *dom.Document
	registry  *rq.Registry
	collector *patchCollector
	unobserve func()
	seq       uint64
	attached  bool
	closed    bool

	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *serverMetrics
}

type sessionDeps struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	tracerProv    trace.TracerProvider
	metrics       *serverMetrics
	engineMetrics *rq.Metrics
}

func newSession(app App, deps sessionDeps) (*Session, error) {
	id := uuid.NewString()
	logger := deps.logger.With("session", id)

	doc, err := app.Document()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", app.Name(), err)
	}
	opts := []rq.Option{
		rq.WithLogger(logger),
		rq.WithMetrics(deps.engineMetrics),
	}
	if deps.tracerProv != nil {
		opts = append(opts, rq.WithTracerProvider(deps.tracerProv))
	}
	registry := rq.NewRegistry(opts...)
	if err := app.Mount(registry, doc); err != nil {
		registry.Close()
		return nil, fmt.Errorf("mount %s: %w", app.Name(), err)
	}
	if err := registry.Flush(); err != nil {
		logger.Warn("initial flush failed", "error", err)
	}
	injectClient(doc, id)

	s := &Session{
		ID:        id,
		Created:   time.Now(),
		doc:       doc,
		registry:  registry,
		collector: newPatchCollector(),
		logger:    logger,
		tracer:    deps.tracer,
		metrics:   deps.metrics,
	}
	s.unobserve = doc.Observe(s.collector)
	return s, nil
}

// injectClient adds the session meta tag and the client script to the head.
func injectClient(doc *dom.Document, id string) {
	head := doc.Root().Find(func(n *dom.Node) bool { return n.IsElement("head") })
	if head == nil {
		head = doc.Body()
	}
	meta := doc.CreateElement("meta")
	meta.SetAttribute("name", SessionIDMeta)
	meta.SetAttribute("content", id)
	script := doc.CreateElement("script")
	script.SetAttribute("src", ClientScriptPath)
	script.SetAttribute("defer", "")
	_ = head.AppendChild(meta)
	_ = head.AppendChild(script)
}

// Render writes the page with element ids the client addresses patches to.
func (s *Session) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dom.Render(w, s.doc.Root(), dom.WithIDs())
}

// Registry returns the registry of the session. Callers must not use it
// concurrently with HandleMessage.
func (s *Session) Registry() *rq.Registry {
	return s.registry
}

// HandleMessage applies a client frame and returns the reply, if any.
func (s *Session) HandleMessage(ctx context.Context, msg *ClientMessage) *ServerMessage {
	switch msg.Type {
	case FramePing:
		return &ServerMessage{Type: FramePong}
	case FrameEvent:
		return s.handleEvent(ctx, msg)
	}
	return nil
}

func (s *Session) handleEvent(ctx context.Context, msg *ClientMessage) *ServerMessage {
	start := time.Now()
	_, span := s.tracer.Start(ctx, "rq.server.event",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("rq.session", s.ID),
			attribute.String("rq.event", msg.Event),
			attribute.Int64("rq.target", int64(msg.Target)),
		),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	node := s.doc.NodeByID(msg.Target)
	if node == nil || !node.IsConnected() {
		err := errors.New("E161").WithDetailf("no element with id %d", msg.Target)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.eventErrors.WithLabelValues(err.Code).Inc()
		reply := errorMessage(err)
		return &reply
	}

	evt := dom.NewEvent(msg.Event, true)
	evt.Key = msg.Key
	if msg.Value != nil {
		evt.Value = *msg.Value
		if node.IsFormControl() {
			node.SetValue(*msg.Value)
			s.collector.forgetValue(node)
		}
	}
	s.dispatch(node, evt, span)

	if err := s.registry.Flush(); err != nil {
		s.logger.Warn("flush after event failed", "event", msg.Event, "error", err)
		span.RecordError(err)
	}
	s.metrics.eventsTotal.WithLabelValues(msg.Event).Inc()
	s.metrics.eventDuration.Observe(time.Since(start).Seconds())

	if !s.collector.Pending() {
		return nil
	}
	patches := s.collector.Drain()
	if len(patches) == 0 {
		return nil
	}
	s.seq++
	span.SetAttributes(attribute.Int("rq.patches", len(patches)))
	return &ServerMessage{Type: FramePatch, Seq: s.seq, Patches: patches}
}

// dispatch runs the handlers of evt. A panicking handler is logged and the
// session stays usable.
func (s *Session) dispatch(node *dom.Node, evt *dom.Event, span trace.Span) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event handler panic",
				"event", evt.Type,
				"panic", r,
				"stack", string(debug.Stack()))
			span.SetStatus(codes.Error, fmt.Sprint(r))
			s.metrics.eventErrors.WithLabelValues("panic").Inc()
		}
	}()
	node.Dispatch(evt)
}

// Close disposes everything the session mounted. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.unobserve()
	s.registry.Close()
}

// SessionManager tracks the sessions of a server.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

func (m *SessionManager) add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

// Get returns the session with the given id.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// attach claims a session for a WebSocket connection. A session can be
// attached once.
func (m *SessionManager) attach(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q not found", id)
	}
	if s.attached {
		return nil, fmt.Errorf("session %q already connected", id)
	}
	s.attached = true
	return s, nil
}

// Remove closes and forgets a session.
func (m *SessionManager) Remove(id string) {
	s, ok := m.Get(id)
	if !ok {
		return
	}
	s.Close()

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// prune removes sessions whose page never connected within timeout.
func (m *SessionManager) prune(timeout time.Duration) int {
	cutoff := time.Now().Add(-timeout)
	var stale []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if !s.attached && s.Created.Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// Count returns the number of tracked sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown closes every session.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
