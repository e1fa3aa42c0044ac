package rqtest

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/rq"
)

// Harness is a document with a registry bound to it.
type Harness struct {
	T         testing.TB
	Doc       *dom.Document
	Registry  *rq.Registry
	Mutations *Recorder

	prom *prometheus.Registry
	logs *syncBuffer
}

// New parses markup and creates a registry for it. The registry logs to an
// in-memory buffer at debug level and registers its metrics on a private
// Prometheus registry. Extra options are applied after the defaults.
//
// Example:
//
//	h := rqtest.New(t, `<ul rq-component="todos"><li rq="item"></li></ul>`)
func New(t testing.TB, markup string, opts ...rq.Option) *Harness {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse markup: %v", err)
	}

	h := &Harness{
		T:         t,
		Doc:       doc,
		Mutations: NewRecorder(),
		prom:      prometheus.NewRegistry(),
		logs:      &syncBuffer{},
	}
	logger := slog.New(slog.NewTextHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	base := []rq.Option{
		rq.WithLogger(logger),
		rq.WithMetrics(rq.NewMetrics(rq.WithRegisterer(h.prom))),
	}
	h.Registry = rq.NewRegistry(append(base, opts...)...)

	cancel := doc.Observe(h.Mutations)
	t.Cleanup(func() {
		cancel()
		h.Registry.Close()
	})
	return h
}

// Host returns the element marked rq-component="name".
func (h *Harness) Host(name string) *dom.Node {
	h.T.Helper()
	host := h.Doc.Root().QueryAttr(rq.AttrComponent, name, nil)
	if host == nil {
		h.T.Fatalf("no host with %s=%q", rq.AttrComponent, name)
	}
	return host
}

// Mount mounts setup on the host of the named component and flushes.
//
// Example:
//
//	c := h.Mount("todos", func(c *rq.Component) func() { ... })
func (h *Harness) Mount(name string, setup rq.SetupFunc) *rq.Component {
	h.T.Helper()
	c, err := h.Registry.Mount(name, h.Host(name), setup)
	if err != nil {
		h.T.Fatalf("mount %q: %v", name, err)
	}
	h.Flush()
	return c
}

// Flush runs pending list passes and fails the test on error.
func (h *Harness) Flush() {
	h.T.Helper()
	if err := h.Registry.Flush(); err != nil {
		h.T.Fatalf("flush: %v", err)
	}
}

// Find returns the first node bound to rq="name" anywhere in the document.
func (h *Harness) Find(name string) *dom.Node {
	h.T.Helper()
	n := h.Doc.Root().QueryAttr(rq.AttrBinding, name, nil)
	if n == nil {
		h.T.Fatalf("no node with %s=%q", rq.AttrBinding, name)
	}
	return n
}

// FindAll returns every node bound to rq="name", in document order.
func (h *Harness) FindAll(name string) []*dom.Node {
	return h.Doc.Root().FindAll(func(n *dom.Node) bool {
		v, ok := n.Attr(rq.AttrBinding)
		return ok && v == name
	})
}

// Texts returns the text of every node bound to rq="name".
func (h *Harness) Texts(name string) []string {
	var out []string
	for _, n := range h.FindAll(name) {
		out = append(out, n.TextContent())
	}
	return out
}

// Click dispatches a bubbling click on n and flushes.
func (h *Harness) Click(n *dom.Node) {
	h.T.Helper()
	h.Dispatch(n, dom.NewEvent("click", true))
}

// Input sets the value of a form control, dispatches an input event and
// flushes.
func (h *Harness) Input(n *dom.Node, value string) {
	h.T.Helper()
	n.SetValue(value)
	evt := dom.NewEvent("input", true)
	evt.Value = value
	h.Dispatch(n, evt)
}

// Dispatch dispatches evt on n and flushes.
func (h *Harness) Dispatch(n *dom.Node, evt *dom.Event) {
	h.T.Helper()
	n.Dispatch(evt)
	h.Flush()
}

// HTML renders the body.
func (h *Harness) HTML() string {
	return h.Doc.Body().InnerHTML()
}

// ExpectText asserts the text of the first node bound to rq="name".
func (h *Harness) ExpectText(name, want string) {
	h.T.Helper()
	if got := h.Find(name).TextContent(); got != want {
		h.T.Errorf("text of %q = %q, want %q", name, got, want)
	}
}

// ExpectTexts asserts the texts of every node bound to rq="name".
func (h *Harness) ExpectTexts(name string, want ...string) {
	h.T.Helper()
	got := h.Texts(name)
	if len(got) != len(want) {
		h.T.Errorf("texts of %q = %q, want %q", name, got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			h.T.Errorf("texts of %q = %q, want %q", name, got, want)
			return
		}
	}
}

// Logs returns everything logged so far.
func (h *Harness) Logs() string {
	return h.logs.String()
}

// LogContains reports whether the log output contains substr.
func (h *Harness) LogContains(substr string) bool {
	return strings.Contains(h.logs.String(), substr)
}

// Counter returns the sum of every series of the named counter, or 0 when it
// has not been collected.
func (h *Harness) Counter(name string) float64 {
	h.T.Helper()
	families, err := h.prom.Gather()
	if err != nil {
		h.T.Fatalf("gather metrics: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
