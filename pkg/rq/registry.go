package rq

import (
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/reactive"
)

// Registry owns the components mounted into one document: the root
// components, the instance index used by Lookup, the host index used to find
// parent components, and the scheduler that runs list passes.
//
// A registry lives as long as its render host. Close disposes everything it
// mounted.
type Registry struct {
	logger    *slog.Logger
	scheduler *reactive.Scheduler
	metrics   *Metrics
	tracer    trace.Tracer

	defs map[string]Definition

	roots     []*Component
	rootIdx   map[string]*Component
	instances map[string][]*Component
	hosts     map[*dom.Node]*Component

	unobserve map[*dom.Document]func()
	closed    bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithScheduler sets the scheduler that runs list passes.
func WithScheduler(s *reactive.Scheduler) Option {
	return func(r *Registry) {
		if s != nil {
			r.scheduler = s
		}
	}
}

// WithMetrics sets the metrics collectors. The default collectors are not
// registered anywhere.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithTracerProvider sets where pass spans go. The default is the global
// OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Registry) {
		if tp != nil {
			r.tracer = tp.Tracer(defaultTracerName)
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger:    slog.Default(),
		scheduler: reactive.NewScheduler(),
		tracer:    defaultTracer(),
		defs:      make(map[string]Definition),
		rootIdx:   make(map[string]*Component),
		instances: make(map[string][]*Component),
		hosts:     make(map[*dom.Node]*Component),
		unobserve: make(map[*dom.Document]func()),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics()
	}
	return r
}

// Logger returns the registry logger.
func (r *Registry) Logger() *slog.Logger { return r.logger }

// Scheduler returns the scheduler that runs list passes.
func (r *Registry) Scheduler() *reactive.Scheduler { return r.scheduler }

// Flush runs pending list passes. Rejected passes are reported in the
// returned error.
func (r *Registry) Flush() error {
	return r.scheduler.Flush()
}

// Define registers a component definition for MountAll.
func (r *Registry) Define(name string, def Definition) {
	r.defs[name] = def
}

// Mount binds a component to host. The instance key is the host's prop:key
// attribute or name, and must be unique among its siblings: the roots, or
// the nested components of the nearest mounted ancestor component.
func (r *Registry) Mount(name string, host *dom.Node, setup SetupFunc) (*Component, error) {
	return r.mount(name, host, Definition{Setup: setup})
}

func (r *Registry) mount(name string, host *dom.Node, def Definition) (*Component, error) {
	if existing, ok := r.hosts[host]; ok {
		return nil, duplicateInstance(name, existing.key)
	}

	key := instanceKey(name, host)
	parent := r.parentOf(host)
	if parent != nil {
		if _, dup := parent.childIdx[key]; dup {
			return nil, duplicateInstance(name, key)
		}
	} else if _, dup := r.rootIdx[key]; dup {
		return nil, duplicateInstance(name, key)
	}

	c := &Component{
		reg:        r,
		name:       name,
		key:        key,
		host:       host,
		parent:     parent,
		elementIdx: make(map[string]*Element),
		childIdx:   make(map[string]*Component),
		Props:      reactive.NewMapSignal(parseProps(host, def.Props)),
		Store:      reactive.NewMapSignal(copyMap(def.Store)),
	}
	if host.GetAttribute(AttrComponent) == "" {
		host.SetAttribute(AttrComponent, name)
	}

	if parent != nil {
		parent.components = append(parent.components, c)
		parent.childIdx[key] = c
	} else {
		r.roots = append(r.roots, c)
		r.rootIdx[key] = c
	}
	r.instances[name] = append(r.instances[name], c)
	r.hosts[host] = c
	r.observe(host.Document())

	if def.Setup != nil {
		cleanup, err := runSetup(c, def.Setup)
		if err != nil {
			c.Dispose()
			return nil, err
		}
		if cleanup != nil {
			c.cleanups.add(cleanup)
		}
	}
	c.mounted = true
	host.RemoveAttribute(AttrCloak)

	r.logger.Debug("component mounted",
		slog.String("component", name),
		slog.String("key", key),
	)
	return c, nil
}

func runSetup(c *Component, setup SetupFunc) (cleanup func(), err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("rq: setup of component %q panicked: %v", c.name, rec)
		}
	}()
	reactive.Untracked(func() { cleanup = setup(c) })
	return cleanup, nil
}

// MountAll mounts every defined component whose host lies under root, in
// document order so parents mount before their children. Hosts are marked
// with rq-component="<name>". Already mounted hosts are skipped.
func (r *Registry) MountAll(root *dom.Node) ([]*Component, error) {
	hosts := root.FindAll(func(n *dom.Node) bool {
		return n.IsElement() && n.HasAttribute(AttrComponent)
	})
	if root.IsElement() && root.HasAttribute(AttrComponent) {
		hosts = append([]*dom.Node{root}, hosts...)
	}

	var mounted []*Component
	for _, host := range hosts {
		if _, ok := r.hosts[host]; ok {
			continue
		}
		name := host.GetAttribute(AttrComponent)
		def, ok := r.defs[name]
		if !ok {
			r.logger.Warn("component not defined", slog.String("component", name))
			continue
		}
		c, err := r.mount(name, host, def)
		if err != nil {
			return mounted, err
		}
		mounted = append(mounted, c)
	}
	return mounted, nil
}

// Lookup returns a mounted component by name and instance key. An empty key
// returns the first mounted instance.
func (r *Registry) Lookup(name, key string) (*Component, error) {
	for _, c := range r.instances[name] {
		if key == "" || c.key == key {
			return c, nil
		}
	}
	return nil, componentNotFound(name, key)
}

// Roots returns the root components in mount order.
func (r *Registry) Roots() []*Component {
	return append([]*Component(nil), r.roots...)
}

// ComponentAt returns the component mounted on host.
func (r *Registry) ComponentAt(host *dom.Node) *Component {
	return r.hosts[host]
}

// Close disposes every root component and stops observing documents.
func (r *Registry) Close() {
	if r.closed {
		return
	}
	r.closed = true
	roots := r.roots
	for i := len(roots) - 1; i >= 0; i-- {
		roots[i].Dispose()
	}
	for doc, cancel := range r.unobserve {
		cancel()
		delete(r.unobserve, doc)
	}
}

// parentOf returns the component mounted on the nearest ancestor of host.
func (r *Registry) parentOf(host *dom.Node) *Component {
	for p := host.Parent(); p != nil; p = p.Parent() {
		if c, ok := r.hosts[p]; ok {
			return c
		}
	}
	return nil
}

func (r *Registry) forget(c *Component) {
	if r.rootIdx[c.key] == c {
		delete(r.rootIdx, c.key)
		for i, x := range r.roots {
			if x == c {
				r.roots = append(r.roots[:i], r.roots[i+1:]...)
				break
			}
		}
	}
	list := r.instances[c.name]
	for i, x := range list {
		if x == c {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.instances, c.name)
	} else {
		r.instances[c.name] = list
	}
	if r.hosts[c.host] == c {
		delete(r.hosts, c.host)
	}
}

// observe keeps props in sync with prop:* attribute changes of mounted
// hosts in doc.
func (r *Registry) observe(doc *dom.Document) {
	if doc == nil {
		return
	}
	if _, ok := r.unobserve[doc]; ok {
		return
	}
	r.unobserve[doc] = doc.Observe(dom.ObserverFunc(func(m dom.Mutation) {
		if m.Kind != dom.MutationSetAttr && m.Kind != dom.MutationRemoveAttr {
			return
		}
		name, ok := strings.CutPrefix(m.Name, propPrefix)
		if !ok {
			return
		}
		c, ok := r.hosts[m.Target]
		if !ok {
			return
		}
		prop := kebabToCamel(name)
		if m.Kind == dom.MutationRemoveAttr {
			c.Props.RemoveKey(prop)
			return
		}
		c.Props.SetKey(prop, parseAttributeValue(m.Value))
	}))
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
